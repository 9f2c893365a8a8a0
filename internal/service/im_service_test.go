package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/model"
	"Admission/internal/pkg/consts"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type imFixture struct {
	users    *fakeUserRepo
	convs    *fakeConvRepo
	messages *fakeMessageRepo
	emitter  *fakeEmitter
	svc      IMService
}

func newIMFixture() *imFixture {
	f := &imFixture{
		users: newFakeUserRepo(
			&model.User{ID: 1, Name: "王老师", Role: consts.RoleAdvisor},
			&model.User{ID: 2, Name: "张同学", Role: consts.RoleStudent},
			&model.User{ID: 3, Name: "李同学", Role: consts.RoleStudent},
		),
		convs:   newFakeConvRepo(),
		emitter: &fakeEmitter{},
	}
	f.messages = &fakeMessageRepo{convs: f.convs}
	f.svc = NewIMService(f.users, f.convs, f.messages, f.emitter)
	return f
}

func ptr[T any](v T) *T { return &v }

func TestSendMessageRejectsNonMember(t *testing.T) {
	f := newIMFixture()
	convID := f.convs.seedGroup(1, 2)

	_, err := f.svc.SendMessage(context.Background(), 3, &dto.SendMessageReq{ConversationID: &convID, Text: "你好"})
	assert.ErrorIs(t, err, ErrNotConversationMember)
	assert.Equal(t, 0, f.messages.count())
	assert.Empty(t, f.emitter.events)
}

func TestSendMessageRequiresTextOrImages(t *testing.T) {
	f := newIMFixture()
	convID := f.convs.seedGroup(1, 2)

	_, err := f.svc.SendMessage(context.Background(), 1, &dto.SendMessageReq{ConversationID: &convID, Text: "   "})
	assert.ErrorIs(t, err, ErrMessageEmpty)
	assert.Equal(t, 0, f.messages.count())

	res, err := f.svc.SendMessage(context.Background(), 1, &dto.SendMessageReq{ConversationID: &convID, ImageIDs: []uint64{7}})
	require.NoError(t, err)
	assert.True(t, res.HasImages)
	assert.Equal(t, "image", res.MessageType)
}

func TestSendMessageEmitsToOtherMembersAfterCommit(t *testing.T) {
	f := newIMFixture()
	convID := f.convs.seedGroup(1, 2, 3)
	f.emitter.onEmit = func() {
		assert.Equal(t, 1, f.messages.count(), "emit must happen after the message is stored")
	}

	res, err := f.svc.SendMessage(context.Background(), 1, &dto.SendMessageReq{ConversationID: &convID, Text: " 明天开放日 "})
	require.NoError(t, err)
	assert.Equal(t, "明天开放日", res.Text)
	assert.Equal(t, "text", res.MessageType)

	assert.Equal(t, []uint64{2, 3}, f.emitter.recipients(consts.EventNewMessage))
	event, ok := f.emitter.events[0].payload.(dto.NewMessageEvent)
	require.True(t, ok)
	assert.Equal(t, convID, event.ConversationID)
	assert.Equal(t, res.ID, event.Message.ID)
}

func TestSendMessageCommitFailureEmitsNothing(t *testing.T) {
	f := newIMFixture()
	convID := f.convs.seedGroup(1, 2)
	f.messages.err = errors.New("deadlock found")

	_, err := f.svc.SendMessage(context.Background(), 1, &dto.SendMessageReq{ConversationID: &convID, Text: "hi"})
	require.Error(t, err)
	assert.Empty(t, f.emitter.events)
}

func TestResolveConversationIsIdempotent(t *testing.T) {
	f := newIMFixture()
	ctx := context.Background()

	first, err := f.svc.ResolveConversation(ctx, 2, nil, ptr(uint64(1)))
	require.NoError(t, err)
	second, err := f.svc.ResolveConversation(ctx, 2, nil, ptr(uint64(1)))
	require.NoError(t, err)
	reversed, err := f.svc.ResolveConversation(ctx, 1, nil, ptr(uint64(2)))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ID, reversed.ID)
	assert.Equal(t, 1, f.convs.creates)
	assert.False(t, first.IsGroup)

	ids, _ := f.convs.GetMemberIDs(ctx, first.ID)
	assert.Equal(t, []uint64{1, 2}, ids)
}

func TestResolveConversationRereadsAfterDuplicateKey(t *testing.T) {
	f := newIMFixture()
	f.convs.raceOnce = true

	conv, err := f.svc.ResolveConversation(context.Background(), 2, nil, ptr(uint64(3)))
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Len(t, f.convs.convs, 1)
	assert.Equal(t, "2_3", *conv.PeerKey)
}

func TestResolveConversationValidation(t *testing.T) {
	f := newIMFixture()
	ctx := context.Background()

	_, err := f.svc.ResolveConversation(ctx, 2, nil, nil)
	assert.ErrorIs(t, err, ErrConversationTarget)

	_, err = f.svc.ResolveConversation(ctx, 2, nil, ptr(uint64(2)))
	assert.ErrorIs(t, err, ErrConversationSelf)

	_, err = f.svc.ResolveConversation(ctx, 2, ptr(uint64(99)), nil)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	_, err = f.svc.ResolveConversation(ctx, 2, nil, ptr(uint64(42)))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func seedMessages(f *imFixture, convID uint64, n int) time.Time {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		f.messages.messages = append(f.messages.messages, &model.Message{
			ID:             uint64(i),
			ConversationID: convID,
			SenderID:       1,
			Text:           "msg",
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		})
	}
	return base
}

func TestGetMessagesPaginatesWithCursor(t *testing.T) {
	f := newIMFixture()
	convID := f.convs.seedGroup(1, 2)
	base := seedMessages(f, convID, 5)
	ctx := context.Background()

	page, err := f.svc.GetMessages(ctx, 2, &dto.GetMessagesReq{ConversationID: convID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, uint64(5), page.Messages[0].ID)
	assert.Equal(t, uint64(4), page.Messages[1].ID)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, base.Add(4*time.Second).Format(time.RFC3339Nano), *page.NextCursor)
	assert.Equal(t, base.Add(5*time.Second).Format(time.RFC3339Nano), *page.PrevCursor)

	page, err = f.svc.GetMessages(ctx, 2, &dto.GetMessagesReq{ConversationID: convID, Limit: 2, Cursor: *page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, uint64(3), page.Messages[0].ID)
	assert.Equal(t, uint64(2), page.Messages[1].ID)
	assert.True(t, page.HasMore)

	page, err = f.svc.GetMessages(ctx, 2, &dto.GetMessagesReq{ConversationID: convID, Limit: 2, Cursor: *page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextCursor)
}

func TestGetMessagesClampsLimit(t *testing.T) {
	f := newIMFixture()
	convID := f.convs.seedGroup(1, 2)
	ctx := context.Background()

	_, err := f.svc.GetMessages(ctx, 1, &dto.GetMessagesReq{ConversationID: convID, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, maxMessageLimit+1, f.messages.lastQuery.Limit)

	_, err = f.svc.GetMessages(ctx, 1, &dto.GetMessagesReq{ConversationID: convID})
	require.NoError(t, err)
	assert.Equal(t, defaultMessageLimit+1, f.messages.lastQuery.Limit)

	_, err = f.svc.GetMessages(ctx, 1, &dto.GetMessagesReq{ConversationID: convID, Limit: -3})
	require.NoError(t, err)
	assert.Equal(t, 2, f.messages.lastQuery.Limit)
}

func TestGetMessagesDirectPairWithoutConversation(t *testing.T) {
	f := newIMFixture()

	page, err := f.svc.GetMessages(context.Background(), 2, &dto.GetMessagesReq{SenderID: 2, ReceiverID: 3})
	require.NoError(t, err)
	assert.Empty(t, page.Messages)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextCursor)
	assert.Nil(t, page.PrevCursor)
}

func TestGetMessagesRequiresMembership(t *testing.T) {
	f := newIMFixture()
	convID := f.convs.seedGroup(1, 2)
	ctx := context.Background()

	_, err := f.svc.GetMessages(ctx, 3, &dto.GetMessagesReq{ConversationID: convID})
	assert.ErrorIs(t, err, ErrNotConversationMember)

	_, err = f.svc.GetMessages(ctx, 3, &dto.GetMessagesReq{SenderID: 1, ReceiverID: 2})
	assert.ErrorIs(t, err, ErrNotConversationMember)

	_, err = f.svc.GetMessages(ctx, 1, &dto.GetMessagesReq{ConversationID: convID, Before: "yesterday"})
	assert.ErrorIs(t, err, ErrParamInvalid)
}
