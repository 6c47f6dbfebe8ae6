package dto

type AuthURLRes struct {
	AuthURL string `json:"authUrl"`
}

type OAuthQuery struct {
	Action           string `form:"action" binding:"required,oneof=get_auth_url callback"`
	UserID           string `form:"user_id"`
	Code             string `form:"code"`
	State            string `form:"state"`
	Error            string `form:"error"`
	ErrorDescription string `form:"error_description"`
}
