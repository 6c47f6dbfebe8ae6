package http

import (
	"net/http"

	"propgen/domain/dto"
	"propgen/usecase"

	"github.com/gin-gonic/gin"
)

const (
	actionGetAuthURL = "get_auth_url"
	actionCallback   = "callback"
)

type IOAuthHandler interface {
	Handle(c *gin.Context)
}

type OAuthHandler struct {
	oauth usecase.IOAuthUsecase
}

func NewOAuthHandler(oauth usecase.IOAuthUsecase) IOAuthHandler {
	return &OAuthHandler{oauth: oauth}
}

// Handle serves GET /oauth/:provider. The action query parameter selects
// between issuing an authorization URL (bearer required) and the provider
// callback (browser redirect, no bearer).
func (h *OAuthHandler) Handle(c *gin.Context) {
	var q dto.OAuthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, err)
		return
	}
	provider := c.Param("provider")
	switch q.Action {
	case actionGetAuthURL:
		caller, _ := callerID(c)
		authURL, err := h.oauth.GetAuthURL(c.Request.Context(), provider, caller, q.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.AuthURLRes{AuthURL: authURL})
	case actionCallback:
		target := h.oauth.HandleCallback(c.Request.Context(), provider, usecase.CallbackParams{
			Code:  q.Code,
			State: q.State,
			Error: q.Error,
		})
		c.Redirect(http.StatusFound, target)
	}
}
