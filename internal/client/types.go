// ABOUTME: Data types for the blog REST API
// ABOUTME: Mirrors backend JSON shapes for users, posts, taxonomy, comments and files

package client

// User is a blog account as returned by the backend
type User struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	FullName     string   `json:"fullName,omitempty"`
	ProfileImage string   `json:"profileImage,omitempty"`
	Avatar       string   `json:"avatar,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	Active       *bool    `json:"active,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty"`
	UpdatedAt    string   `json:"updatedAt,omitempty"`
}

// HasRole reports whether u carries role
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Author is the abbreviated user embedded in posts and comments
type Author struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
}

// Category groups posts
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PostCount   int    `json:"postCount,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Tag labels posts
type Tag struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	PostCount int    `json:"postCount,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Post is a blog article
type Post struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Summary       string    `json:"summary,omitempty"`
	Author        *Author   `json:"author,omitempty"`
	Category      *Category `json:"category,omitempty"`
	Tags          []Tag     `json:"tags,omitempty"`
	Published     bool      `json:"published"`
	FeaturedImage string    `json:"featuredImage,omitempty"`
	ViewCount     int64     `json:"viewCount,omitempty"`
	CommentCount  int64     `json:"commentCount,omitempty"`
	CreatedAt     string    `json:"createdAt,omitempty"`
	UpdatedAt     string    `json:"updatedAt,omitempty"`
}

// Comment is a reader comment on a post
type Comment struct {
	ID        int64   `json:"id"`
	Content   string  `json:"content"`
	PostID    int64   `json:"postId"`
	PostTitle string  `json:"postTitle,omitempty"`
	Author    *Author `json:"author,omitempty"`
	CreatedAt string  `json:"createdAt,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty"`
}

// Page is the backend's paginated list envelope
type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Size             int   `json:"size"`
	Number           int   `json:"number"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

// PageQuery selects a page of a list endpoint
type PageQuery struct {
	Page      int
	Size      int
	SortBy    string
	Direction string
}

// RichContent is the editor's structured content. It is flattened to a
// string before being sent.
type RichContent struct {
	HTML string `json:"html,omitempty"`
	Text string `json:"text,omitempty"`
}

// PostInput creates or updates a post. Content may be a string or RichContent.
type PostInput struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Content       any     `json:"content" validate:"required"`
	Summary       string  `json:"summary,omitempty" validate:"max=500"`
	CategoryID    int64   `json:"categoryId,omitempty" validate:"gte=0"`
	TagIDs        []int64 `json:"tagIds,omitempty" validate:"dive,gt=0"`
	Published     bool    `json:"published"`
	FeaturedImage string  `json:"featuredImage,omitempty" validate:"omitempty,url"`
}

// CategoryInput creates or updates a category
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description,omitempty" validate:"max=200"`
}

// TagInput creates or updates a tag
type TagInput struct {
	Name string `json:"name" validate:"required,max=30"`
}

// CommentInput creates a comment on a post
type CommentInput struct {
	Content string `json:"content" validate:"required,max=1000"`
	PostID  int64  `json:"postId" validate:"required,gt=0"`
}

// LoginRequest is the username/password sign-in body
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the sign-up body
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=40"`
	FullName string `json:"fullName,omitempty" validate:"max=100"`
}

// UserUpdate changes fields of a user. Empty fields are left unchanged.
type UserUpdate struct {
	Username string   `json:"username,omitempty" validate:"omitempty,min=3,max=20"`
	Email    string   `json:"email,omitempty" validate:"omitempty,email"`
	Avatar   string   `json:"avatar,omitempty" validate:"omitempty,url"`
	Roles    []string `json:"roles,omitempty" validate:"dive,startswith=ROLE_"`
}

// PasswordChange changes the current user's password
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=40"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// FileUploadResponse describes a stored upload
type FileUploadResponse struct {
	FileName    string `json:"fileName"`
	FileURL     string `json:"fileUrl"`
	FileType    string `json:"fileType"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// MessageResponse is a bare acknowledgement from the backend
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the backend's error body
type ErrorResponse struct {
	Timestamp string `json:"timestamp,omitempty"`
	Status    int    `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	Path      string `json:"path,omitempty"`
}
