package common

const (
	RedisStreamCuratorTask = "curator.task"

	RedisStreamGroup    = "curator-group"
	RedisStreamConsumer = "curator-consumer"

	TaskFetch   = "fetch"
	TaskDigest  = "digest"
	TaskCleanup = "cleanup"
)
