package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kilbertusrobin/joynt-backend/internal/platform/apierr"
	"github.com/kilbertusrobin/joynt-backend/internal/requestdata"
	"github.com/kilbertusrobin/joynt-backend/internal/services"
	"github.com/kilbertusrobin/joynt-backend/internal/types"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Handle    string `json:"handle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, err)
		return
	}
	result, err := ah.authService.RegisterLocal(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Handle:    req.Handle,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, result)
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, err)
		return
	}
	result, err := ah.authService.LoginLocal(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, result)
}

// GoogleMobile exchanges a Google id_token obtained by the mobile client
// for a session. This is the production SSO path; there is no browser
// redirect flow in this backend.
func (ah *AuthHandler) GoogleMobile(c *gin.Context) {
	var req struct {
		IDToken string `json:"id_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, err)
		return
	}
	result, err := ah.authService.AuthenticateWithGoogleToken(c.Request.Context(), req.IDToken)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, result)
}

func (ah *AuthHandler) AppleMobile(c *gin.Context) {
	var req struct {
		IdentityToken string `json:"identity_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, err)
		return
	}
	result, err := ah.authService.AuthenticateWithAppleToken(c.Request.Context(), req.IdentityToken)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, result)
}

func (ah *AuthHandler) ListProviders(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeInvalidRequest, nil)
		return
	}
	providers, err := ah.authService.ListProviders(c.Request.Context(), rd.AccountID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"providers": providers})
}

func (ah *AuthHandler) UnlinkProvider(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeInvalidRequest, nil)
		return
	}
	provider := types.AuthProvider(c.Param("provider"))
	switch provider {
	case types.ProviderGoogle, types.ProviderApple:
	default:
		RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, nil)
		return
	}
	if err := ah.authService.UnlinkProvider(c.Request.Context(), rd.AccountID, provider); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "provider unlinked"})
}
