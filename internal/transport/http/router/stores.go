package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"store-rating/internal/domain"
	"store-rating/internal/query"
	"store-rating/internal/service"
	httpez "store-rating/internal/transport/http/ez"
)

type storeIn struct {
	Name    string `json:"name"    binding:"required,max=255"`
	Email   string `json:"email"   binding:"required,email"`
	Address string `json:"address" binding:"required,max=400"`
}

type createStoreIn struct {
	storeIn
	OwnerName     string `json:"ownerName"     binding:"required,personname"`
	OwnerPassword string `json:"ownerPassword" binding:"required,strongpwd"`
}

func mountStores(e httpez.EZ, svc *service.StoreService) {
	admin := []domain.Role{domain.RoleAdmin}

	httpez.RegisterAction(e, httpez.Action[query.Params, *service.UserStorePage]{
		Method: http.MethodGet,
		Path:   "/user/list",
		Binder: httpez.BindQuery,
		Roles:  []domain.Role{domain.RoleUser},
		Handler: func(c *gin.Context, in *query.Params) (*service.UserStorePage, error) {
			return svc.ListForUser(c.Request.Context(), httpez.Identity(c).ID, *in)
		},
	})

	httpez.RegisterAction(e, httpez.Action[query.Params, *service.StorePage]{
		Method: http.MethodGet,
		Path:   "/admin/all",
		Binder: httpez.BindQuery,
		Roles:  admin,
		Handler: func(c *gin.Context, in *query.Params) (*service.StorePage, error) {
			return svc.List(c.Request.Context(), *in)
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *domain.StoreWithOwner]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: httpez.BindNone,
		Roles:  domain.AllRoles,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.StoreWithOwner, error) {
			return svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	httpez.RegisterAction(e, httpez.Action[createStoreIn, *service.CreatedStore]{
		Method: http.MethodPost,
		Path:   "",
		Binder: httpez.BindJSON,
		Roles:  admin,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createStoreIn) (*service.CreatedStore, error) {
			return svc.Create(c.Request.Context(), service.CreateStoreInput{
				Name:          in.Name,
				Email:         in.Email,
				Address:       in.Address,
				OwnerName:     in.OwnerName,
				OwnerPassword: in.OwnerPassword,
			})
		},
	})

	httpez.RegisterAction(e, httpez.Action[storeIn, *domain.StoreWithOwner]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: httpez.BindJSON,
		Roles:  admin,
		Handler: func(c *gin.Context, in *storeIn) (*domain.StoreWithOwner, error) {
			return svc.Update(c.Request.Context(), c.Param("id"), service.StoreFields{
				Name: in.Name, Email: in.Email, Address: in.Address,
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
			return msgOut{Message: "store deleted successfully"}, nil
		},
	})
}
