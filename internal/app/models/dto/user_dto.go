package dto

// UpdateProfileRequest represents profile update form fields. Empty fields are left unchanged.
type UpdateProfileRequest struct {
	Name       string `form:"name" json:"name" binding:"omitempty,min=1,max=120"`
	University string `form:"university" json:"university" binding:"omitempty,min=1,max=160"`
}
