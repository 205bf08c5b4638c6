package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"store-rating/internal/domain"
	"store-rating/internal/query"
	"store-rating/internal/service"
	httpez "store-rating/internal/transport/http/ez"
)

type listUsersIn struct {
	query.Params
	Role string `form:"role" binding:"omitempty,role"`
}

type createUserIn struct {
	Name     string      `json:"name"     binding:"required,personname"`
	Email    string      `json:"email"    binding:"required,email"`
	Password string      `json:"password" binding:"required,strongpwd"`
	Address  string      `json:"address"  binding:"max=400"`
	Role     domain.Role `json:"role"     binding:"required,role"`
}

// updateUserIn 只更新出现的字段
type updateUserIn struct {
	Name     *string      `json:"name"     binding:"omitempty,personname"`
	Email    *string      `json:"email"    binding:"omitempty,email"`
	Address  *string      `json:"address"  binding:"omitempty,max=400"`
	Role     *domain.Role `json:"role"     binding:"omitempty,role"`
	Password *string      `json:"password" binding:"omitempty,strongpwd"`
}

func mountUsers(e httpez.EZ, svc *service.UserService) {
	admin := []domain.Role{domain.RoleAdmin}

	httpez.RegisterAction(e, httpez.Action[struct{}, *domain.Stats]{
		Method: http.MethodGet,
		Path:   "/dashboard/stats",
		Binder: httpez.BindNone,
		Roles:  admin,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Stats, error) {
			return svc.Stats(c.Request.Context())
		},
	})

	httpez.RegisterAction(e, httpez.Action[listUsersIn, *service.UserPage]{
		Method: http.MethodGet,
		Path:   "",
		Binder: httpez.BindQuery,
		Roles:  admin,
		Handler: func(c *gin.Context, in *listUsersIn) (*service.UserPage, error) {
			return svc.List(c.Request.Context(), domain.UserFilter{Role: domain.Role(in.Role), Params: in.Params})
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *domain.UserDetail]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: httpez.BindNone,
		Roles:  admin,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.UserDetail, error) {
			return svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	httpez.RegisterAction(e, httpez.Action[createUserIn, *domain.User]{
		Method: http.MethodPost,
		Path:   "",
		Binder: httpez.BindJSON,
		Roles:  admin,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createUserIn) (*domain.User, error) {
			return svc.Create(c.Request.Context(), service.CreateUserInput{
				Name: in.Name, Email: in.Email, Password: in.Password, Address: in.Address, Role: in.Role,
			})
		},
	})

	httpez.RegisterAction(e, httpez.Action[updateUserIn, *domain.UserDetail]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: httpez.BindJSON,
		Roles:  admin,
		Handler: func(c *gin.Context, in *updateUserIn) (*domain.UserDetail, error) {
			return svc.Update(c.Request.Context(), c.Param("id"), service.UpdateUserInput{
				Name: in.Name, Email: in.Email, Address: in.Address, Role: in.Role, Password: in.Password,
			})
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, msgOut]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: httpez.BindNone,
		Roles:  admin,
		Handler: func(c *gin.Context, _ *struct{}) (msgOut, error) {
			if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return msgOut{}, err
			}
			return msgOut{Message: "user deleted successfully"}, nil
		},
	})
}
