package dto

type UpdateProfileReq struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	Company     *string `json:"company" binding:"omitempty,max=100"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,url"`
	LogoURL     *string `json:"logo_url" binding:"omitempty,url"`
	Language    *string `json:"language" binding:"omitempty,oneof=en es fr de pt it"`
}

type ListReq struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}
