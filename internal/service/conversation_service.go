package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/model"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/queue"
	"Admission/internal/pkg/realtime"
	"Admission/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"strings"
	"time"
)

// ConversationService 会话与群成员管理，除查询与退出外仅招生老师和管理员可操作
type ConversationService interface {
	CreateGroup(ctx context.Context, actor dto.Creator, req *dto.CreateGroupReq) (*dto.ConversationDTO, error)
	AddMembers(ctx context.Context, actor dto.Creator, convID uint64, userIDs []uint64) ([]uint64, error)
	Leave(ctx context.Context, actor dto.Creator, convID uint64) error
	RemoveMember(ctx context.Context, actor dto.Creator, convID, userID uint64) error
	Rename(ctx context.Context, actor dto.Creator, convID uint64, name string) error
	Delete(ctx context.Context, actor dto.Creator, convID uint64) error
	List(ctx context.Context, userID uint64, search string) ([]*dto.ConversationDTO, error)
	MarkRead(ctx context.Context, userID, convID uint64) error
	Members(ctx context.Context, actor dto.Creator, convID uint64, query *dto.MembersQuery) (*dto.PageResult[dto.UserBriefDTO], error)
}

type conversationServiceImpl struct {
	convRepo repository.ConversationRepo
	emitter  realtime.Emitter
	producer queue.Producer
}

func NewConversationService(convRepo repository.ConversationRepo, emitter realtime.Emitter, producer queue.Producer) ConversationService {
	return &conversationServiceImpl{
		convRepo: convRepo,
		emitter:  emitter,
		producer: producer,
	}
}

func (s *conversationServiceImpl) CreateGroup(ctx context.Context, actor dto.Creator, req *dto.CreateGroupReq) (*dto.ConversationDTO, error) {
	if !isStaff(actor) {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = consts.DefaultGroupName
	}

	conv := &model.Conversation{IsGroup: true, Name: &name}
	memberIDs := append([]uint64{actor.ID}, req.UserIDs...)
	if err := s.convRepo.CreateConversation(ctx, conv, memberIDs); err != nil {
		return nil, err
	}

	event := dto.MemberAddedEvent{ConversationID: conv.ID, AddedBy: actor.ID}
	for _, uid := range req.UserIDs {
		if uid != actor.ID {
			s.emit(ctx, uid, consts.EventMemberAdded, event)
		}
	}

	return &dto.ConversationDTO{ID: conv.ID, IsGroup: true, Name: conv.Name, Members: []dto.UserBriefDTO{}}, nil
}

// AddMembers 已在群里的用户会被跳过，返回实际加入的用户
func (s *conversationServiceImpl) AddMembers(ctx context.Context, actor dto.Creator, convID uint64, userIDs []uint64) ([]uint64, error) {
	if !isStaff(actor) {
		return nil, ErrForbidden
	}
	conv, err := s.getGroup(ctx, convID)
	if err != nil {
		return nil, err
	}

	added, err := s.convRepo.AddMembers(ctx, convID, userIDs)
	if err != nil {
		return nil, err
	}
	if len(added) == 0 {
		return []uint64{}, nil
	}

	event := dto.MemberAddedEvent{ConversationID: convID, AddedBy: actor.ID}
	for _, uid := range added {
		s.emit(ctx, uid, consts.EventMemberAdded, event)
	}

	link := strconv.FormatUint(convID, 10)
	enqueue(ctx, s.producer, consts.QueueNotifications, consts.JobSendNotification, dto.NotificationJob{
		UserIDs:        added,
		Type:           consts.NotificationConversation,
		Message:        fmt.Sprintf("%s 将你加入了群聊「%s」", actor.Name, groupName(conv)),
		Link:           &link,
		ConversationID: &convID,
		CreatedBy:      actor,
	})
	return added, nil
}

// Leave 退出会话，最后一人退出时会话连同消息一起删除
func (s *conversationServiceImpl) Leave(ctx context.Context, actor dto.Creator, convID uint64) error {
	if _, err := s.getConversation(ctx, convID); err != nil {
		return err
	}
	isMember, err := s.convRepo.IsMember(ctx, convID, actor.ID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrNotConversationMember
	}

	destroyed, publicIDs, err := s.convRepo.LeaveConversation(ctx, convID, actor.ID)
	if err != nil {
		return err
	}
	if destroyed {
		log.InfoContext(ctx, "conversation destroyed after last member left", "conversation_id", convID)
		enqueueImageDeletes(ctx, s.producer, publicIDs)
		return nil
	}

	remaining, err := s.convRepo.GetMemberIDs(ctx, convID)
	if err != nil {
		log.WarnContext(ctx, "load remaining members failed", "conversation_id", convID, "err", err)
		return nil
	}
	event := dto.MemberLeftEvent{ConversationID: convID, LeftUserID: actor.ID}
	for _, uid := range remaining {
		s.emit(ctx, uid, consts.EventMemberLeft, event)
	}
	return nil
}

func (s *conversationServiceImpl) RemoveMember(ctx context.Context, actor dto.Creator, convID, userID uint64) error {
	if !isStaff(actor) {
		return ErrForbidden
	}
	conv, err := s.getGroup(ctx, convID)
	if err != nil {
		return err
	}

	removed, err := s.convRepo.RemoveMember(ctx, convID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrMemberNotFound
	}

	enqueue(ctx, s.producer, consts.QueueNotifications, consts.JobSendNotification, dto.NotificationJob{
		UserIDs:        []uint64{userID},
		Type:           consts.NotificationConversation,
		Message:        fmt.Sprintf("你已被 %s 移出群聊「%s」", actor.Name, groupName(conv)),
		ConversationID: &convID,
		CreatedBy:      actor,
	})

	remaining, err := s.convRepo.GetMemberIDs(ctx, convID)
	if err != nil {
		log.WarnContext(ctx, "load remaining members failed", "conversation_id", convID, "err", err)
		return nil
	}
	event := dto.MemberLeftEvent{ConversationID: convID, LeftUserID: userID}
	for _, uid := range append(remaining, userID) {
		s.emit(ctx, uid, consts.EventMemberLeft, event)
	}
	return nil
}

func (s *conversationServiceImpl) Rename(ctx context.Context, actor dto.Creator, convID uint64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrGroupNameEmpty
	}
	if !isStaff(actor) {
		return ErrForbidden
	}
	if _, err := s.getGroup(ctx, convID); err != nil {
		return err
	}

	if err := s.convRepo.Rename(ctx, convID, name); err != nil {
		return err
	}

	members, err := s.convRepo.GetMemberIDs(ctx, convID)
	if err != nil {
		log.WarnContext(ctx, "load members failed", "conversation_id", convID, "err", err)
		return nil
	}
	event := dto.ConversationRenamedEvent{ConversationID: convID, NewName: name, UpdatedBy: actor.ID}
	for _, uid := range members {
		s.emit(ctx, uid, consts.EventConversationRenamed, event)
	}
	return nil
}

func (s *conversationServiceImpl) Delete(ctx context.Context, actor dto.Creator, convID uint64) error {
	if !isStaff(actor) {
		return ErrForbidden
	}
	if _, err := s.getConversation(ctx, convID); err != nil {
		return err
	}

	members, err := s.convRepo.GetMemberIDs(ctx, convID)
	if err != nil {
		return err
	}
	publicIDs, err := s.convRepo.DeleteConversation(ctx, convID)
	if err != nil {
		return err
	}

	event := dto.ConversationDeletedEvent{ConversationID: convID}
	for _, uid := range members {
		s.emit(ctx, uid, consts.EventConversationDeleted, event)
	}
	enqueueImageDeletes(ctx, s.producer, publicIDs)
	return nil
}

func (s *conversationServiceImpl) List(ctx context.Context, userID uint64, search string) ([]*dto.ConversationDTO, error) {
	summaries, err := s.convRepo.ListUserConversations(ctx, userID, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationDTO, 0, len(summaries))
	for _, sum := range summaries {
		conv := sum.Conversation
		item := &dto.ConversationDTO{
			ID:          conv.ID,
			IsGroup:     conv.IsGroup,
			Name:        conv.Name,
			Members:     make([]dto.UserBriefDTO, 0, len(conv.Members)),
			UnreadCount: sum.UnreadCount,
		}
		for i := range conv.Members {
			item.Members = append(item.Members, toUserBrief(&conv.Members[i].User))
		}
		if sum.LastMessage != nil {
			item.LastMessage = toMessageDTO(sum.LastMessage)
		}
		res = append(res, item)
	}
	return res, nil
}

func (s *conversationServiceImpl) MarkRead(ctx context.Context, userID, convID uint64) error {
	isMember, err := s.convRepo.IsMember(ctx, convID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrNotConversationMember
	}
	return s.convRepo.MarkRead(ctx, convID, userID, time.Now())
}

func (s *conversationServiceImpl) Members(ctx context.Context, actor dto.Creator, convID uint64, query *dto.MembersQuery) (*dto.PageResult[dto.UserBriefDTO], error) {
	if _, err := s.getConversation(ctx, convID); err != nil {
		return nil, err
	}
	if !isStaff(actor) {
		isMember, err := s.convRepo.IsMember(ctx, convID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, ErrNotConversationMember
		}
	}

	page, limit, offset := normalizePage(query.Page, query.Limit)
	users, total, err := s.convRepo.ListMembers(ctx, convID, strings.TrimSpace(query.Search), limit, offset)
	if err != nil {
		return nil, err
	}

	list := make([]dto.UserBriefDTO, 0, len(users))
	for _, u := range users {
		list = append(list, toUserBrief(u))
	}
	return dto.NewPageResult(list, total, page, limit), nil
}

func (s *conversationServiceImpl) getConversation(ctx context.Context, convID uint64) (*model.Conversation, error) {
	conv, err := s.convRepo.GetConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

// getGroup 成员变更与改名只对群聊开放
func (s *conversationServiceImpl) getGroup(ctx context.Context, convID uint64) (*model.Conversation, error) {
	conv, err := s.getConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !conv.IsGroup {
		return nil, ErrParamInvalid
	}
	return conv, nil
}

func (s *conversationServiceImpl) emit(ctx context.Context, userID uint64, event string, payload any) {
	if err := s.emitter.EmitToActor(ctx, userID, event, payload); err != nil {
		log.WarnContext(ctx, "emit event failed", "event", event, "user_id", userID, "err", err)
	}
}

func groupName(conv *model.Conversation) string {
	if conv.Name == nil || *conv.Name == "" {
		return consts.DefaultGroupName
	}
	return *conv.Name
}
