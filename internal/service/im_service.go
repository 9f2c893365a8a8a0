package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/model"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/database"
	"Admission/internal/pkg/realtime"
	"Admission/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"
)

const (
	defaultMessageLimit = 20
	maxMessageLimit     = 50
)

// IMService 即时通讯服务接口定义
type IMService interface {
	ResolveConversation(ctx context.Context, senderID uint64, conversationID, receiverID *uint64) (*model.Conversation, error)
	SendMessage(ctx context.Context, senderID uint64, req *dto.SendMessageReq) (*dto.MessageDTO, error)
	GetMessages(ctx context.Context, userID uint64, req *dto.GetMessagesReq) (*dto.MessagePageDTO, error)
}

type imServiceImpl struct {
	userRepo    repository.UserRepo
	convRepo    repository.ConversationRepo
	messageRepo repository.MessageRepo
	emitter     realtime.Emitter
}

func NewIMService(userRepo repository.UserRepo, convRepo repository.ConversationRepo, messageRepo repository.MessageRepo, emitter realtime.Emitter) IMService {
	return &imServiceImpl{
		userRepo:    userRepo,
		convRepo:    convRepo,
		messageRepo: messageRepo,
		emitter:     emitter,
	}
}

// ResolveConversation 给定会话 ID 时校验成员身份；只给接收者时查找或创建单聊
func (s *imServiceImpl) ResolveConversation(ctx context.Context, senderID uint64, conversationID, receiverID *uint64) (*model.Conversation, error) {
	if conversationID != nil && *conversationID != 0 {
		conv, err := s.convRepo.GetConversation(ctx, *conversationID)
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return nil, ErrConversationNotFound
		}
		isMember, err := s.convRepo.IsMember(ctx, conv.ID, senderID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, ErrNotConversationMember
		}
		return conv, nil
	}

	if receiverID == nil || *receiverID == 0 {
		return nil, ErrConversationTarget
	}
	if *receiverID == senderID {
		return nil, ErrConversationSelf
	}

	peerKey := directPeerKey(senderID, *receiverID)
	conv, err := s.convRepo.GetConversationByPeerKey(ctx, peerKey)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return conv, nil
	}

	receiver, err := s.userRepo.GetUserByID(ctx, *receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	conv = &model.Conversation{IsGroup: false, PeerKey: &peerKey}
	err = s.convRepo.CreateConversation(ctx, conv, []uint64{senderID, *receiverID})
	if err == nil {
		return conv, nil
	}
	if !database.IsDuplicateKey(err) {
		return nil, err
	}

	// 并发创建同一单聊，唯一索引冲突后读取已存在的会话
	conv, err = s.convRepo.GetConversationByPeerKey(ctx, peerKey)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

// SendMessage 消息在事务内落库，提交成功后再逐个推送给其他成员
func (s *imServiceImpl) SendMessage(ctx context.Context, senderID uint64, req *dto.SendMessageReq) (*dto.MessageDTO, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" && len(req.ImageIDs) == 0 {
		return nil, ErrMessageEmpty
	}

	conv, err := s.ResolveConversation(ctx, senderID, req.ConversationID, req.ReceiverID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Text:           text,
	}
	members, err := s.messageRepo.CreateMessage(ctx, msg, req.ImageIDs)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	res := toMessageDTO(msg)
	event := dto.NewMessageEvent{ConversationID: conv.ID, Message: res}
	for _, uid := range members {
		if uid == senderID {
			continue
		}
		if err = s.emitter.EmitToActor(ctx, uid, consts.EventNewMessage, event); err != nil {
			log.WarnContext(ctx, "emit newMessage failed", "user_id", uid, "conversation_id", conv.ID, "err", err)
		}
	}

	return res, nil
}

// GetMessages 按时间倒序的游标分页，多取一条用于判断是否还有更多
func (s *imServiceImpl) GetMessages(ctx context.Context, userID uint64, req *dto.GetMessagesReq) (*dto.MessagePageDTO, error) {
	limit := clampMessageLimit(req.Limit)

	convID, err := s.messageConversation(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	if convID == 0 {
		return &dto.MessagePageDTO{Messages: []*dto.MessageDTO{}}, nil
	}

	query := repository.MessageQuery{Limit: limit + 1}
	switch {
	case req.Before != "":
		t, err := parseCursor(req.Before)
		if err != nil {
			return nil, err
		}
		query.Before = &t
	case req.After != "":
		t, err := parseCursor(req.After)
		if err != nil {
			return nil, err
		}
		query.After = &t
	case req.Cursor != "":
		t, err := parseCursor(req.Cursor)
		if err != nil {
			return nil, err
		}
		query.Before = &t
	}

	msgs, err := s.messageRepo.ListMessages(ctx, convID, query)
	if err != nil {
		return nil, err
	}

	hasMore := len(msgs) > limit
	if hasMore {
		msgs = msgs[:limit]
	}

	page := &dto.MessagePageDTO{
		Messages: make([]*dto.MessageDTO, 0, len(msgs)),
		HasMore:  hasMore,
	}
	for _, m := range msgs {
		page.Messages = append(page.Messages, toMessageDTO(m))
	}
	if len(msgs) > 0 {
		page.PrevCursor = formatCursor(msgs[0].CreatedAt)
		if hasMore {
			page.NextCursor = formatCursor(msgs[len(msgs)-1].CreatedAt)
		}
	}
	return page, nil
}

// messageConversation 解析查询的会话，单聊尚未建立时返回 0
func (s *imServiceImpl) messageConversation(ctx context.Context, userID uint64, req *dto.GetMessagesReq) (uint64, error) {
	if req.ConversationID != 0 {
		conv, err := s.convRepo.GetConversation(ctx, req.ConversationID)
		if err != nil {
			return 0, err
		}
		if conv == nil {
			return 0, ErrConversationNotFound
		}
		isMember, err := s.convRepo.IsMember(ctx, conv.ID, userID)
		if err != nil {
			return 0, err
		}
		if !isMember {
			return 0, ErrNotConversationMember
		}
		return conv.ID, nil
	}

	if req.SenderID == 0 || req.ReceiverID == 0 {
		return 0, ErrConversationTarget
	}
	if req.SenderID == req.ReceiverID {
		return 0, ErrConversationSelf
	}
	if userID != req.SenderID && userID != req.ReceiverID {
		return 0, ErrNotConversationMember
	}

	conv, err := s.convRepo.GetConversationByPeerKey(ctx, directPeerKey(req.SenderID, req.ReceiverID))
	if err != nil {
		return 0, err
	}
	if conv == nil {
		return 0, nil
	}
	return conv.ID, nil
}

func directPeerKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}

func clampMessageLimit(limit int) int {
	switch {
	case limit == 0:
		return defaultMessageLimit
	case limit < 1:
		return 1
	case limit > maxMessageLimit:
		return maxMessageLimit
	}
	return limit
}

func parseCursor(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: cursor %q", ErrParamInvalid, raw)
	}
	return t, nil
}
