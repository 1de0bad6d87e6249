package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kilbertusrobin/joynt-backend/internal/platform/apierr"
	"github.com/kilbertusrobin/joynt-backend/internal/requestdata"
	"github.com/kilbertusrobin/joynt-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeInvalidRequest, nil)
		return
	}
	account, err := uh.userService.GetMe(c.Request.Context(), rd.AccountID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, account)
}

func (uh *UserHandler) UpdateProfile(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeInvalidRequest, nil)
		return
	}
	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Handle    *string `json:"handle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, err)
		return
	}
	profile, err := uh.userService.UpdateProfile(c.Request.Context(), rd.AccountID, services.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Handle:    req.Handle,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, profile)
}
