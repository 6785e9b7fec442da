package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messaging-service/internal/models"
	"messaging-service/internal/notify"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateOrGetRoom(ctx context.Context, userID, peerID string) (models.RoomView, error) {
	args := m.Called(ctx, userID, peerID)
	var view models.RoomView
	if val := args.Get(0); val != nil {
		view = val.(models.RoomView)
	}
	return view, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID int64, userID string) (models.RoomView, error) {
	args := m.Called(ctx, roomID, userID)
	var view models.RoomView
	if val := args.Get(0); val != nil {
		view = val.(models.RoomView)
	}
	return view, args.Error(1)
}

func (m *RoomRepositoryMock) ListRoomPeers(ctx context.Context, userID string) ([]models.RoomPeer, error) {
	args := m.Called(ctx, userID)
	var peers []models.RoomPeer
	if val := args.Get(0); val != nil {
		peers = val.([]models.RoomPeer)
	}
	return peers, args.Error(1)
}

func (m *RoomRepositoryMock) ListRoomSummaries(ctx context.Context, userID string, limit, offset int) ([]models.RoomSummary, error) {
	args := m.Called(ctx, userID, limit, offset)
	var summaries []models.RoomSummary
	if val := args.Get(0); val != nil {
		summaries = val.([]models.RoomSummary)
	}
	return summaries, args.Error(1)
}

func (m *RoomRepositoryMock) IsParticipant(ctx context.Context, roomID int64, userID string) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, roomID int64, senderID string, payload models.Payload) (models.Message, error) {
	args := m.Called(ctx, roomID, senderID, payload)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListRoomMessages(ctx context.Context, roomID int64, userID string, limit, offset int) ([]models.MessageView, error) {
	args := m.Called(ctx, roomID, userID, limit, offset)
	var msgs []models.MessageView
	if val := args.Get(0); val != nil {
		msgs = val.([]models.MessageView)
	}
	return msgs, args.Error(1)
}

type DeliveryStatusRepositoryMock struct {
	mock.Mock
}

func (m *DeliveryStatusRepositoryMock) MarkDelivered(ctx context.Context, roomID int64, excludeSenderID string) (int64, error) {
	args := m.Called(ctx, roomID, excludeSenderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DeliveryStatusRepositoryMock) MarkSeen(ctx context.Context, roomID int64, excludeSenderID string) (int64, error) {
	args := m.Called(ctx, roomID, excludeSenderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DeliveryStatusRepositoryMock) MarkAllDeliveredForUser(ctx context.Context, userID string) ([]models.RoomPeer, int64, error) {
	args := m.Called(ctx, userID)
	var touched []models.RoomPeer
	if val := args.Get(0); val != nil {
		touched = val.([]models.RoomPeer)
	}
	return touched, args.Get(1).(int64), args.Error(2)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) SetOnlineStatus(ctx context.Context, userID string, online bool) error {
	args := m.Called(ctx, userID, online)
	return args.Error(0)
}

func (m *UserRepositoryMock) RecordAdminToken(ctx context.Context, adminID, token string) error {
	args := m.Called(ctx, adminID, token)
	return args.Error(0)
}

func (m *UserRepositoryMock) ListAdminTokens(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var tokens []string
	if val := args.Get(0); val != nil {
		tokens = val.([]string)
	}
	return tokens, args.Error(1)
}

type RegistryMock struct {
	mock.Mock
}

func (m *RegistryMock) Register(ctx context.Context, userID, connID string) error {
	args := m.Called(ctx, userID, connID)
	return args.Error(0)
}

func (m *RegistryMock) Lookup(ctx context.Context, userID string) (string, bool, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *RegistryMock) Unregister(ctx context.Context, userID, connID string) (bool, error) {
	args := m.Called(ctx, userID, connID)
	return args.Bool(0), args.Error(1)
}

type GatewayMock struct {
	mock.Mock
}

func (m *GatewayMock) SendBulk(ctx context.Context, tokens []string, title, body string) ([]notify.Result, error) {
	args := m.Called(ctx, tokens, title, body)
	var results []notify.Result
	if val := args.Get(0); val != nil {
		results = val.([]notify.Result)
	}
	return results, args.Error(1)
}
