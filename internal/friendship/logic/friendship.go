package logic

import (
	"context"
	"go-friendship/internal/common/errcode"
	"go-friendship/internal/common/response"
	"go-friendship/internal/friendship/model"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Lifecycle is what the HTTP layer needs from the friend request server.
type Lifecycle interface {
	Submit(ctx context.Context, senderID, recipientID string) (*model.FriendRequest, error)
	Accept(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.FriendRequest, error)
}

type FriendshipApi struct {
	s Lifecycle
}

func NewFriendshipApi(s Lifecycle) *FriendshipApi {
	return &FriendshipApi{s}
}

func (api *FriendshipApi) RegisterRouter(engine *gin.RouterGroup) {
	friendship := engine.Group("/friendships")
	{
		friendship.POST("", api.Submit)
		friendship.GET("/:id", api.Get)
		friendship.POST("/:id/accept", api.Accept)
		friendship.POST("/:id/reject", api.Reject)
	}
}

func (api *FriendshipApi) Submit(c *gin.Context) {
	var (
		req  SubmitReq
		resp *model.FriendRequest
		err  error
	)
	defer func() {
		if err != nil {
			response.Error(c, err)
		} else {
			response.Success(c, http.StatusCreated, resp)
		}
	}()
	if err = c.ShouldBindJSON(&req); err != nil {
		err = errcode.ErrInvalidParam
		return
	}
	resp, err = api.s.Submit(c.Request.Context(), req.SenderId, req.RecipientId)
}

func (api *FriendshipApi) Get(c *gin.Context) {
	var (
		uri  RequestUri
		resp *model.FriendRequest
		err  error
	)
	defer func() {
		if err != nil {
			response.Error(c, err)
		} else {
			response.Success(c, http.StatusOK, resp)
		}
	}()
	if err = c.ShouldBindUri(&uri); err != nil {
		err = errcode.ErrInvalidParam
		return
	}
	resp, err = api.s.Get(c.Request.Context(), uri.Id)
}

func (api *FriendshipApi) Accept(c *gin.Context) {
	api.transition(c, api.s.Accept, model.StatusAccepted, "friend request accepted")
}

func (api *FriendshipApi) Reject(c *gin.Context) {
	api.transition(c, api.s.Reject, model.StatusRejected, "friend request rejected")
}

func (api *FriendshipApi) transition(c *gin.Context, op func(context.Context, int64) error, to model.Status, message string) {
	var (
		uri RequestUri
		err error
	)
	defer func() {
		if err != nil {
			response.Error(c, err)
		} else {
			response.Success(c, http.StatusOK, TransitionResp{Id: uri.Id, Status: to.String(), Message: message})
		}
	}()
	// an id that cannot name a request is reported like an unknown one
	if err = c.ShouldBindUri(&uri); err != nil {
		err = errcode.ErrNotFoundOrNotPending
		return
	}
	err = op(c.Request.Context(), uri.Id)
}
