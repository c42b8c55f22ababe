package redis

import "github.com/redis/go-redis/v9"

// Result hash fields
const (
	fieldParticipantID = "participant_id"
	fieldKind          = "kind"
	fieldScore         = "score"
	fieldAttempts      = "attempts"
	fieldSubmittedAt   = "submitted_at"
)

// createParticipantScript stores a participant only if the key is free.
// The index is written first, so a failing SADD leaves no unindexed record.
// KEYS: participant key, participants index. ARGV: participant JSON.
// Returns 1 when created and 0 when the id was taken.
var createParticipantScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('SADD', KEYS[2], KEYS[1])
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

// insertResultScript writes the result hash only if it does not exist yet.
// KEYS: result key, results index. ARGV: participant id, kind, score, submitted_at.
// Returns 1 when inserted and 0 when a row already existed.
var insertResultScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'participant_id', ARGV[1], 'kind', ARGV[2], 'score', ARGV[3], 'attempts', '1', 'submitted_at', ARGV[4])
redis.call('SADD', KEYS[2], KEYS[1])
return 1
`)

// upsertBestScript inserts the result or keeps the minimum score of an existing one.
// KEYS and ARGV match insertResultScript.
// Returns {outcome, score, attempts, submitted_at} for the stored row.
var upsertBestScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  redis.call('HSET', KEYS[1], 'participant_id', ARGV[1], 'kind', ARGV[2], 'score', ARGV[3], 'attempts', '1', 'submitted_at', ARGV[4])
  redis.call('SADD', KEYS[2], KEYS[1])
  return {'accepted', ARGV[3], '1', ARGV[4]}
end
local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
local current = redis.call('HGET', KEYS[1], 'score')
if tonumber(ARGV[3]) < tonumber(current) then
  redis.call('HSET', KEYS[1], 'score', ARGV[3], 'submitted_at', ARGV[4])
  return {'improved', ARGV[3], tostring(attempts), ARGV[4]}
end
return {'already_recorded', current, tostring(attempts), redis.call('HGET', KEYS[1], 'submitted_at')}
`)

// deleteAllResultsScript removes every indexed result hash and the index itself.
// KEYS: results index. Returns the number of result hashes deleted.
var deleteAllResultsScript = redis.NewScript(`
local keys = redis.call('SMEMBERS', KEYS[1])
local deleted = 0
for _, key in ipairs(keys) do
  deleted = deleted + redis.call('DEL', key)
end
redis.call('DEL', KEYS[1])
return deleted
`)
