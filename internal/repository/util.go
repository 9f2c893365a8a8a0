package repository

import "sort"

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// sortSummaries 有消息的会话按最后消息时间倒序，无消息的按创建时间
func sortSummaries(list []*ConversationSummary) {
	activity := func(s *ConversationSummary) int64 {
		if s.LastMessage != nil {
			return s.LastMessage.CreatedAt.UnixNano()
		}
		return 0
	}
	sort.SliceStable(list, func(i, j int) bool {
		return activity(list[i]) > activity(list[j])
	})
}
