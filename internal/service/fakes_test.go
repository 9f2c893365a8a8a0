package service

import (
	"Admission/internal/model"
	"Admission/internal/repository"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
)

type emitted struct {
	userID  uint64
	event   string
	payload any
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
	onEmit func()
}

func (e *fakeEmitter) EmitToActor(_ context.Context, userID uint64, event string, payload any) error {
	if e.onEmit != nil {
		e.onEmit()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{userID: userID, event: event, payload: payload})
	return nil
}

func (e *fakeEmitter) recipients(event string) []uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	var ids []uint64
	for _, ev := range e.events {
		if ev.event == event {
			ids = append(ids, ev.userID)
		}
	}
	return ids
}

type enqueued struct {
	queue   string
	name    string
	payload any
}

type fakeProducer struct {
	mu   sync.Mutex
	jobs []enqueued
}

func (p *fakeProducer) Enqueue(_ context.Context, queue, name string, payload any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, enqueued{queue: queue, name: name, payload: payload})
	return "job", nil
}

func (p *fakeProducer) byQueue(queue string) []enqueued {
	p.mu.Lock()
	defer p.mu.Unlock()
	var res []enqueued
	for _, j := range p.jobs {
		if j.queue == queue {
			res = append(res, j)
		}
	}
	return res
}

type fakeUserRepo struct {
	repository.UserRepo
	users map[uint64]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint64]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id uint64) (*model.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetEmailsByRole(_ context.Context, role string) ([]string, error) {
	var emails []string
	for _, u := range r.users {
		if u.Role == role {
			emails = append(emails, u.Email)
		}
	}
	sort.Strings(emails)
	return emails, nil
}

// fakeConvRepo 内存版会话仓库
type fakeConvRepo struct {
	repository.ConversationRepo
	mu        sync.Mutex
	nextID    uint64
	convs     map[uint64]*model.Conversation
	members   map[uint64]map[uint64]bool
	creates   int
	raceOnce  bool
	publicIDs map[uint64][]string
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{
		convs:     make(map[uint64]*model.Conversation),
		members:   make(map[uint64]map[uint64]bool),
		publicIDs: make(map[uint64][]string),
	}
}

func (r *fakeConvRepo) insert(conv *model.Conversation, memberIDs []uint64) {
	r.nextID++
	conv.ID = r.nextID
	r.convs[conv.ID] = conv
	r.members[conv.ID] = make(map[uint64]bool)
	for _, uid := range memberIDs {
		r.members[conv.ID][uid] = true
	}
}

func (r *fakeConvRepo) seedGroup(memberIDs ...uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := "招生咨询群"
	conv := &model.Conversation{IsGroup: true, Name: &name}
	r.insert(conv, memberIDs)
	return conv.ID
}

func (r *fakeConvRepo) GetConversation(_ context.Context, convID uint64) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.convs[convID], nil
}

func (r *fakeConvRepo) GetConversationByPeerKey(_ context.Context, peerKey string) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.convs {
		if c.PeerKey != nil && *c.PeerKey == peerKey {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeConvRepo) CreateConversation(_ context.Context, conv *model.Conversation, memberIDs []uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.raceOnce {
		// 模拟另一个请求抢先创建了同一单聊
		r.raceOnce = false
		winner := &model.Conversation{IsGroup: conv.IsGroup, PeerKey: conv.PeerKey}
		r.insert(winner, memberIDs)
		return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	}
	r.creates++
	r.insert(conv, memberIDs)
	return nil
}

func (r *fakeConvRepo) IsMember(_ context.Context, convID, userID uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.members[convID][userID], nil
}

func (r *fakeConvRepo) memberIDs(convID uint64) []uint64 {
	ids := make([]uint64, 0, len(r.members[convID]))
	for uid := range r.members[convID] {
		ids = append(ids, uid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *fakeConvRepo) GetMemberIDs(_ context.Context, convID uint64) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.memberIDs(convID), nil
}

func (r *fakeConvRepo) AddMembers(_ context.Context, convID uint64, userIDs []uint64) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var added []uint64
	for _, uid := range userIDs {
		if r.members[convID][uid] {
			continue
		}
		r.members[convID][uid] = true
		added = append(added, uid)
	}
	return added, nil
}

func (r *fakeConvRepo) RemoveMember(_ context.Context, convID, userID uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.members[convID][userID] {
		return false, nil
	}
	delete(r.members[convID], userID)
	return true, nil
}

func (r *fakeConvRepo) LeaveConversation(_ context.Context, convID, userID uint64) (bool, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members[convID], userID)
	if len(r.members[convID]) > 0 {
		return false, nil, nil
	}
	delete(r.convs, convID)
	delete(r.members, convID)
	return true, r.publicIDs[convID], nil
}

func (r *fakeConvRepo) DeleteConversation(_ context.Context, convID uint64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.convs, convID)
	delete(r.members, convID)
	return r.publicIDs[convID], nil
}

func (r *fakeConvRepo) Rename(_ context.Context, convID uint64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.convs[convID].Name = &name
	return nil
}

func (r *fakeConvRepo) MarkRead(context.Context, uint64, uint64, time.Time) error {
	return nil
}

// fakeMessageRepo 内存版消息仓库，成员信息取自 fakeConvRepo
type fakeMessageRepo struct {
	mu        sync.Mutex
	convs     *fakeConvRepo
	messages  []*model.Message
	err       error
	lastQuery repository.MessageQuery
}

func (r *fakeMessageRepo) CreateMessage(_ context.Context, msg *model.Message, imageIDs []uint64) ([]uint64, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = uint64(len(r.messages) + 1)
	msg.CreatedAt = time.Now()
	msg.Sender = model.User{ID: msg.SenderID, Name: "sender"}
	for _, id := range imageIDs {
		msg.Images = append(msg.Images, model.Image{ID: id, URL: "http://img/" + time.Now().String()})
	}
	r.messages = append(r.messages, msg)

	r.convs.mu.Lock()
	defer r.convs.mu.Unlock()
	return r.convs.memberIDs(msg.ConversationID), nil
}

func (r *fakeMessageRepo) ListMessages(_ context.Context, convID uint64, q repository.MessageQuery) ([]*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery = q

	var res []*model.Message
	for _, m := range r.messages {
		if m.ConversationID != convID {
			continue
		}
		if q.Before != nil && !m.CreatedAt.Before(*q.Before) {
			continue
		}
		if q.After != nil && !m.CreatedAt.After(*q.After) {
			continue
		}
		res = append(res, m)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	if len(res) > q.Limit {
		res = res[:q.Limit]
	}
	return res, nil
}

func (r *fakeMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}
