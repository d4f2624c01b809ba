package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/jonafit/coach-platform/internal/auth"
	"github.com/jonafit/coach-platform/internal/common"
	"github.com/jonafit/coach-platform/internal/email"
	"github.com/jonafit/coach-platform/internal/logger"
	"github.com/jonafit/coach-platform/internal/models"
)

const tokenTTL = 24 * time.Hour

func randomDigits(n int) string {
	out := make([]byte, n)
	for i := range out {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			v = big.NewInt(int64(i % 10))
		}
		out[i] = byte('0' + v.Int64())
	}
	return string(out)
}

func randomUsername() string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	out := make([]byte, 8)
	for i := range out {
		v, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			v = big.NewInt(int64(i))
		}
		out[i] = letters[v.Int64()]
	}
	return "atleta_" + string(out)
}

type sendCaptchaReq struct {
	Email string `json:"email" binding:"required,email"`
}

// SendCaptcha mails a 6-digit signup code and parks it in redis for 10 minutes.
func (h *Handler) SendCaptcha(c *gin.Context) {
	var req sendCaptchaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, "invalid email")
		return
	}

	code := randomDigits(6)
	if err := h.Redis.SetCaptcha(c.Request.Context(), req.Email, code); err != nil {
		logger.Errorf("store captcha: %v", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	go func(to, code string) {
		body := fmt.Sprintf("Seu código de verificação é %s. Ele expira em 10 minutos.", code)
		if err := email.SendText(h.SMTPSetting, to, "Código de verificação", body); err != nil {
			logger.Warnf("send captcha mail to %s: %v", to, err)
		}
	}(req.Email, code)

	common.OK(c, nil)
}

type createUserReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Captcha  string `json:"captcha" binding:"required"`
	FullName string `json:"full_name"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, "invalid request body")
		return
	}

	stored, err := h.Redis.GetCaptcha(c.Request.Context(), req.Email)
	if errors.Is(err, redis.Nil) || (err == nil && stored != req.Captcha) {
		common.Fail(c, http.StatusBadRequest, 40002, "captcha mismatch or expired")
		return
	}
	if err != nil {
		logger.Errorf("read captcha: %v", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	user := models.User{
		Email:        req.Email,
		Username:     randomUsername(),
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         models.RoleStudent,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			common.Fail(c, http.StatusConflict, 40901, "email already registered")
			return
		}
		logger.Errorf("create user: %v", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	_ = h.Redis.DeleteCaptcha(c.Request.Context(), req.Email)

	go func(to, name string) {
		body := fmt.Sprintf("Olá %s, sua conta foi criada. Bons treinos!", name)
		if err := email.SendText(h.SMTPSetting, to, "Bem-vindo", body); err != nil {
			logger.Warnf("send welcome mail to %s: %v", to, err)
		}
	}(user.Email, user.Username)

	common.OK(c, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
	})
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, "invalid request body")
		return
	}

	var user models.User
	err := h.DB.Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !auth.CheckPassword(user.PasswordHash, req.Password)) {
		common.Fail(c, http.StatusUnauthorized, 40102, "wrong email or password")
		return
	}
	if err != nil {
		logger.Errorf("login lookup: %v", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	token, err := auth.SignJWT(user.ID, user.Role, h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		logger.Errorf("sign token: %v", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"username":  user.Username,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}

func (h *Handler) Me(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", u.ID).Error; err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, user)
}
