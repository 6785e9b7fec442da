package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

func setupRoomRouter(handler *RoomHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "alice")
		c.Next()
	})
	r.POST("/rooms", handler.CreateRoom)
	r.GET("/rooms", handler.ListRooms)
	r.GET("/rooms/:room_id", handler.GetRoom)
	r.GET("/rooms/:room_id/messages", handler.ListMessages)
	r.POST("/rooms/:room_id/messages", handler.PostMessage)
	r.PATCH("/rooms/:room_id/seen", handler.MarkSeen)
	return r
}

func TestCreateRoomSuccess(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.MessageRepositoryMock), new(mocks.DeliveryStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	roomRepo.On("CreateOrGetRoom", mock.Anything, "alice", "bob").
		Return(models.RoomView{RoomID: 3, PeerProfile: models.PeerProfile{UserID: "bob", Username: "Bob"}}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewBufferString(`{"peer_id":"bob"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Room models.RoomView `json:"room"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, int64(3), resp.Room.RoomID)
	require.Equal(t, "bob", resp.Room.UserID)
	roomRepo.AssertExpectations(t)
}

func TestCreateRoomWithSelf(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.MessageRepositoryMock), new(mocks.DeliveryStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	roomRepo.On("CreateOrGetRoom", mock.Anything, "alice", "alice").
		Return(models.RoomView{}, repositories.ErrInvalidParticipants).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewBufferString(`{"peer_id":"alice"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	roomRepo.AssertExpectations(t)
}

func TestCreateRoomMissingPeer(t *testing.T) {
	handler := NewRoomHandler(new(mocks.RoomRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.DeliveryStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRoomsPagination(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.MessageRepositoryMock), new(mocks.DeliveryStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	full := make([]models.RoomSummary, roomsPageSize)
	roomRepo.On("ListRoomSummaries", mock.Anything, "alice", roomsPageSize, roomsPageSize).
		Return(full, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms?page=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		NextPage *int `json:"nextPage"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.NextPage)
	require.Equal(t, 3, *resp.NextPage)
	roomRepo.AssertExpectations(t)
}

func TestListRoomsLastPage(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.MessageRepositoryMock), new(mocks.DeliveryStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	roomRepo.On("ListRoomSummaries", mock.Anything, "alice", roomsPageSize, 0).
		Return([]models.RoomSummary{{}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		NextPage *int `json:"nextPage"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Nil(t, resp.NextPage)
}

func TestGetRoomNotFound(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.MessageRepositoryMock), new(mocks.DeliveryStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	roomRepo.On("GetRoom", mock.Anything, int64(9), "alice").
		Return(models.RoomView{}, repositories.ErrRoomNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	roomRepo.AssertExpectations(t)
}

func TestGetRoomBadID(t *testing.T) {
	handler := NewRoomHandler(new(mocks.RoomRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.DeliveryStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/rooms/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMessagesSuccess(t *testing.T) {
	msgRepo := new(mocks.MessageRepositoryMock)
	handler := NewRoomHandler(new(mocks.RoomRepositoryMock), msgRepo, new(mocks.DeliveryStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	msgRepo.On("ListRoomMessages", mock.Anything, int64(4), "alice", messagesPageSize, 0).
		Return([]models.MessageView{{ID: 1, SenderID: "bob"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/4/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.MessageView `json:"messages"`
		NextPage *int                 `json:"nextPage"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 1)
	require.Nil(t, resp.NextPage)
	msgRepo.AssertExpectations(t)
}

func TestPostMessageSuccess(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	msgRepo := new(mocks.MessageRepositoryMock)
	handler := NewRoomHandler(roomRepo, msgRepo, new(mocks.DeliveryStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	roomRepo.On("IsParticipant", mock.Anything, int64(4), "alice").Return(true, nil).Once()
	msgRepo.On("CreateMessage", mock.Anything, int64(4), "alice", models.TextPayload{Content: "hi"}).
		Return(models.Message{ID: 11, SenderID: "alice", Type: models.MessageTypeText, Status: models.StatusSent}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/4/messages", bytes.NewBufferString(`{"type":"text","content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Message models.MessageView `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, int64(11), resp.Message.ID)
	require.True(t, resp.Message.Message.IsOwn)
	roomRepo.AssertExpectations(t)
	msgRepo.AssertExpectations(t)
}

func TestPostMessageNonParticipant(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	msgRepo := new(mocks.MessageRepositoryMock)
	handler := NewRoomHandler(roomRepo, msgRepo, new(mocks.DeliveryStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	roomRepo.On("IsParticipant", mock.Anything, int64(4), "alice").Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/4/messages", bytes.NewBufferString(`{"type":"text","content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	msgRepo.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostMessageUnsupportedType(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.MessageRepositoryMock), new(mocks.DeliveryStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	roomRepo.On("IsParticipant", mock.Anything, int64(4), "alice").Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/4/messages", bytes.NewBufferString(`{"type":"sticker"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkSeenSuccess(t *testing.T) {
	statusRepo := new(mocks.DeliveryStatusRepositoryMock)
	handler := NewRoomHandler(new(mocks.RoomRepositoryMock), new(mocks.MessageRepositoryMock), statusRepo, nil)
	router := setupRoomRouter(handler)

	statusRepo.On("MarkSeen", mock.Anything, int64(4), "alice").Return(int64(3), nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/rooms/4/seen", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	statusRepo.AssertExpectations(t)
}

func TestMarkSeenRepoError(t *testing.T) {
	statusRepo := new(mocks.DeliveryStatusRepositoryMock)
	handler := NewRoomHandler(new(mocks.RoomRepositoryMock), new(mocks.MessageRepositoryMock), statusRepo, nil)
	router := setupRoomRouter(handler)

	statusRepo.On("MarkSeen", mock.Anything, int64(4), "alice").Return(int64(0), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPatch, "/rooms/4/seen", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
