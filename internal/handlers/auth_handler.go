package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"quicktask/internal/models"
	"quicktask/internal/services"
)

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
}

func NewAuthHandler(userService services.UserService, authService services.AuthService) *AuthHandler {
	return &AuthHandler{userService: userService, authService: authService}
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// @Summary      Регистрация
// @Description  Создаёт пользователя и сразу возвращает JWT
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "email и пароль"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][register][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, "[auth][register]", err)
		return
	}
	token, err := h.authService.GenerateToken(user.ID, user.Email)
	if err != nil {
		respondError(c, "[auth][register]", err)
		return
	}
	log.Printf("[auth][register][ok] id=%d email=%q", user.ID, user.Email)
	c.JSON(http.StatusCreated, authResponse{User: user, Token: token})
}

// @Summary      Вход в систему
// @Description  Аутентифицирует пользователя и возвращает JWT
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  authResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, "[auth][login]", err)
		return
	}
	token, err := h.authService.GenerateToken(user.ID, user.Email)
	if err != nil {
		respondError(c, "[auth][login]", err)
		return
	}
	log.Printf("[auth][login][ok] userID=%d", user.ID)
	c.JSON(http.StatusOK, authResponse{User: user, Token: token})
}

// @Summary  Текущий пользователь
// @Tags     Auth
// @Produce  json
// @Security BearerAuth
// @Success  200  {object}  models.User
// @Failure  401  {object}  map[string]string
// @Router   /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), getUserID(c))
	if err != nil {
		respondError(c, "[auth][me]", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
