package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"store-rating/internal/domain"
	"store-rating/internal/service"
	httpez "store-rating/internal/transport/http/ez"
	mdw "store-rating/internal/transport/http/middleware"
)

type registerIn struct {
	Name     string `json:"name"     binding:"required,personname"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,strongpwd"`
	Address  string `json:"address"  binding:"max=400"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updatePasswordIn struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword"     binding:"required,strongpwd"`
}

func mountAuth(e httpez.EZ, svc *service.AuthService, lim Limits) {
	// 登录注册按 IP 额外限速
	pub := e.Group("", mdw.RateLimitPerIP(perIPRate(lim), perIPBurst))

	httpez.RegisterAction(pub, httpez.Action[registerIn, *service.Session]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: httpez.BindJSON,
		Public: true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *registerIn) (*service.Session, error) {
			return svc.Register(c.Request.Context(), service.RegisterInput{
				Name: in.Name, Email: in.Email, Password: in.Password, Address: in.Address,
			})
		},
	})

	httpez.RegisterAction(pub, httpez.Action[loginIn, *service.Session]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: httpez.BindJSON,
		Public: true,
		Handler: func(c *gin.Context, in *loginIn) (*service.Session, error) {
			return svc.Login(c.Request.Context(), in.Email, in.Password)
		},
	})

	httpez.RegisterAction(e, httpez.Action[updatePasswordIn, msgOut]{
		Method: http.MethodPut,
		Path:   "/update-password",
		Binder: httpez.BindJSON,
		Roles:  domain.AllRoles,
		Handler: func(c *gin.Context, in *updatePasswordIn) (msgOut, error) {
			err := svc.UpdatePassword(c.Request.Context(), httpez.Identity(c).ID, in.CurrentPassword, in.NewPassword)
			if err != nil {
				return msgOut{}, err
			}
			return msgOut{Message: "password updated successfully"}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/profile",
		Binder: httpez.BindNone,
		Roles:  domain.AllRoles,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return svc.Profile(c.Request.Context(), httpez.Identity(c).ID)
		},
	})
}
