package dto

type ExtractReq struct {
	URL string `json:"url" binding:"required,url,max=2048"`
}
