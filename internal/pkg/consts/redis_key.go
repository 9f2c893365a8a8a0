package consts

const (
	TokenBlacklistKey = "auth:blacklist:"
	QueueStreamKey    = "queue:"
	QueueDelayedKey   = ":delayed"
	QueueFailedKey    = ":failed"
	RealtimeChannel   = "realtime:emit"
)

const (
	NotificationCleanLock = "lock:notification:clean"
	MediaCleanLock        = "lock:media:clean"
)
