package redisstore

import "github.com/redis/go-redis/v9"

// Script replies are {status, version, ...}: status -1 means the hash is gone,
// 0 means the stored version differs and 1 means the write was applied.
const (
	statusMissing  int64 = -1
	statusMismatch int64 = 0
	statusApplied  int64 = 1
)

// KEYS[1] booking hash, KEYS[2] index
// ARGV version, details, created_by, created_at, updated_at, score, member
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1],
  'version', ARGV[1],
  'details', ARGV[2],
  'created_by', ARGV[3],
  'created_at', ARGV[4],
  'updated_at', ARGV[5])
redis.call('ZADD', KEYS[2], ARGV[6], ARGV[7])
return 1
`)

// KEYS[1] booking hash
// ARGV expected, details, updated_at
var compareAndSwapScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'version')
if not cur then
  return {-1, 0}
end
cur = tonumber(cur)
if cur ~= tonumber(ARGV[1]) then
  return {0, cur}
end
local nv = cur + 1
redis.call('HSET', KEYS[1], 'version', nv, 'details', ARGV[2], 'updated_at', ARGV[3])
local meta = redis.call('HMGET', KEYS[1], 'created_by', 'created_at')
return {1, nv, meta[1], meta[2]}
`)

// KEYS[1] booking hash, KEYS[2] index
// ARGV expected, member
var compareAndDeleteScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'version')
if not cur then
  return {-1, 0}
end
cur = tonumber(cur)
if cur ~= tonumber(ARGV[1]) then
  return {0, cur}
end
redis.call('DEL', KEYS[1])
redis.call('ZREM', KEYS[2], ARGV[2])
return {1, cur}
`)
