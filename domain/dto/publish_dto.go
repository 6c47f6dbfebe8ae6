package dto

// PublishReq is shared by every platform; TikTok reads title and description, the others caption and hashtags
type PublishReq struct {
	PropertyID  string   `json:"propertyId" binding:"required,uuid"`
	ImageURLs   []string `json:"imageUrls" binding:"omitempty,max=10,dive,url"`
	Caption     string   `json:"caption" binding:"omitempty,max=5000"`
	Hashtags    []string `json:"hashtags" binding:"omitempty,max=30"`
	Title       string   `json:"title" binding:"omitempty,max=150"`
	Description string   `json:"description" binding:"omitempty,max=2200"`
}

type PublishRes struct {
	Success   bool   `json:"success"`
	PostID    string `json:"postId"`
	URL       string `json:"url"`
	UploadURL string `json:"uploadUrl,omitempty"`
}
