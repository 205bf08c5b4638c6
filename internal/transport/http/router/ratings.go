package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"store-rating/internal/domain"
	"store-rating/internal/query"
	"store-rating/internal/service"
	httpez "store-rating/internal/transport/http/ez"
)

type submitRatingIn struct {
	StoreID string `json:"storeId" binding:"required"`
	Rating  *int   `json:"rating"  binding:"required,min=1,max=5"`
}

type submitRatingOut struct {
	Message string               `json:"message"`
	Outcome domain.UpsertOutcome `json:"outcome"`
}

// HTTPStatus 首次评分 201，改分 200
func (o submitRatingOut) HTTPStatus() int {
	if o.Outcome == domain.OutcomeCreated {
		return http.StatusCreated
	}
	return http.StatusOK
}

type userRatingOut struct {
	Rating *domain.Rating `json:"rating"`
}

type allRatingsIn struct {
	query.Params
	StoreID string `form:"storeId"`
}

func mountRatings(e httpez.EZ, svc *service.RatingService) {
	httpez.RegisterAction(e, httpez.Action[submitRatingIn, submitRatingOut]{
		Method: http.MethodPost,
		Path:   "/submit",
		Binder: httpez.BindJSON,
		Roles:  []domain.Role{domain.RoleUser},
		Handler: func(c *gin.Context, in *submitRatingIn) (submitRatingOut, error) {
			out, err := svc.Submit(c.Request.Context(), httpez.Identity(c).ID, in.StoreID, *in.Rating)
			if err != nil {
				return submitRatingOut{}, err
			}
			msg := "rating submitted successfully"
			if out == domain.OutcomeUpdated {
				msg = "rating updated successfully"
			}
			return submitRatingOut{Message: msg, Outcome: out}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, userRatingOut]{
		Method: http.MethodGet,
		Path:   "/user/:storeId",
		Binder: httpez.BindNone,
		Roles:  []domain.Role{domain.RoleUser},
		Handler: func(c *gin.Context, _ *struct{}) (userRatingOut, error) {
			r, err := svc.UserRating(c.Request.Context(), httpez.Identity(c).ID, c.Param("storeId"))
			return userRatingOut{Rating: r}, err
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *service.StoreRatings]{
		Method: http.MethodGet,
		Path:   "/store/:storeId",
		Binder: httpez.BindNone,
		Roles:  []domain.Role{domain.RoleStoreOwner},
		Handler: func(c *gin.Context, _ *struct{}) (*service.StoreRatings, error) {
			return svc.StoreRatings(c.Request.Context(), httpez.Identity(c).ID, c.Param("storeId"))
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *service.OwnerDashboard]{
		Method: http.MethodGet,
		Path:   "/dashboard",
		Binder: httpez.BindNone,
		Roles:  []domain.Role{domain.RoleStoreOwner},
		Handler: func(c *gin.Context, _ *struct{}) (*service.OwnerDashboard, error) {
			return svc.OwnerDashboard(c.Request.Context(), httpez.Identity(c).ID)
		},
	})

	httpez.RegisterAction(e, httpez.Action[allRatingsIn, *service.RatingPage]{
		Method: http.MethodGet,
		Path:   "/admin/all",
		Binder: httpez.BindQuery,
		Roles:  []domain.Role{domain.RoleAdmin},
		Handler: func(c *gin.Context, in *allRatingsIn) (*service.RatingPage, error) {
			return svc.AllRatings(c.Request.Context(), in.StoreID, in.Params)
		},
	})
}
