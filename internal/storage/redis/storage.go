package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Participant operations

func (s *Storage) CreateParticipant(ctx context.Context, p *model.Participant) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	keys := []string{participantKey(p.ID), participantsIndexKey()}
	created, err := createParticipantScript.Run(ctx, s.client, keys, string(data)).Int()
	if err != nil {
		return err
	}
	if created == 0 {
		return model.ErrParticipantExists
	}
	return nil
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	data, err := s.client.Get(ctx, participantKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}

	var p model.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	keys, err := s.client.SMembers(ctx, participantsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*model.Participant{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	participants := make([]*model.Participant, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var p model.Participant
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, err
		}
		participants = append(participants, &p)
	}
	storage.SortParticipants(participants)
	return participants, nil
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	data, err := json.Marshal(team)
	if err != nil {
		return err
	}

	key := teamKey(team.Name)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, teamsIndexKey(), key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetTeam(ctx context.Context, name string) (*model.Team, error) {
	data, err := s.client.Get(ctx, teamKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTeamNotFound
		}
		return nil, err
	}

	var team model.Team
	if err := json.Unmarshal(data, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	keys, err := s.client.SMembers(ctx, teamsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*model.Team{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	teams := make([]*model.Team, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var team model.Team
		if err := json.Unmarshal([]byte(str), &team); err != nil {
			return nil, err
		}
		teams = append(teams, &team)
	}
	storage.SortTeams(teams)
	return teams, nil
}

func (s *Storage) DeleteTeam(ctx context.Context, name string) error {
	key := teamKey(name)
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, key)
	pipe.SRem(ctx, teamsIndexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if del.Val() == 0 {
		return model.ErrTeamNotFound
	}
	return nil
}

// renameRetries bounds optimistic retries when a watched key changes mid-rename
const renameRetries = 5

func (s *Storage) RenameTeam(ctx context.Context, from string, team *model.Team) (int, error) {
	oldKey, newKey := teamKey(from), teamKey(team.Name)
	data, err := json.Marshal(team)
	if err != nil {
		return 0, err
	}

	var moved int
	rename := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, oldKey).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return model.ErrTeamNotFound
		}
		if newKey != oldKey {
			taken, err := tx.Exists(ctx, newKey).Result()
			if err != nil {
				return err
			}
			if taken == 1 {
				return model.ErrTeamExists
			}
		}

		members, err := s.membersOf(ctx, tx, from)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, oldKey)
			pipe.SRem(ctx, teamsIndexKey(), oldKey)
			pipe.Set(ctx, newKey, data, 0)
			pipe.SAdd(ctx, teamsIndexKey(), newKey)
			for _, p := range members {
				p.Team = team.Name
				encoded, err := json.Marshal(p)
				if err != nil {
					return err
				}
				pipe.Set(ctx, participantKey(p.ID), encoded, 0)
			}
			return nil
		})
		moved = len(members)
		return err
	}

	// Registrations touch the participants index, so a concurrent one retries the rename
	watched := []string{oldKey, newKey, participantsIndexKey()}
	for i := 0; i < renameRetries; i++ {
		err = s.client.Watch(ctx, rename, watched...)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// membersOf loads the participants registered to team through the watched connection
func (s *Storage) membersOf(ctx context.Context, tx *redis.Tx, team string) ([]*model.Participant, error) {
	keys, err := tx.SMembers(ctx, participantsIndexKey()).Result()
	if err != nil || len(keys) == 0 {
		return nil, err
	}
	values, err := tx.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	want := model.TeamKey(team)
	var members []*model.Participant
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var p model.Participant
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, err
		}
		if model.TeamKey(p.Team) == want {
			members = append(members, &p)
		}
	}
	return members, nil
}

// Result operations

func (s *Storage) InsertResult(ctx context.Context, result *model.GameResult) (bool, error) {
	keys := []string{resultKey(result.ParticipantID, result.Kind), resultsIndexKey()}
	inserted, err := insertResultScript.Run(ctx, s.client, keys, resultArgs(result)...).Int()
	if err != nil {
		return false, err
	}
	return inserted == 1, nil
}

func (s *Storage) UpsertBestResult(ctx context.Context, result *model.GameResult) (model.SubmitOutcome, *model.GameResult, error) {
	keys := []string{resultKey(result.ParticipantID, result.Kind), resultsIndexKey()}
	reply, err := upsertBestScript.Run(ctx, s.client, keys, resultArgs(result)...).StringSlice()
	if err != nil {
		return "", nil, err
	}
	if len(reply) != 4 {
		return "", nil, fmt.Errorf("unexpected upsert reply: %v", reply)
	}

	stored, err := resultFromHash(map[string]string{
		fieldParticipantID: string(result.ParticipantID),
		fieldKind:          string(result.Kind),
		fieldScore:         reply[1],
		fieldAttempts:      reply[2],
		fieldSubmittedAt:   reply[3],
	})
	if err != nil {
		return "", nil, err
	}
	return model.SubmitOutcome(reply[0]), stored, nil
}

func (s *Storage) GetResultsForParticipant(ctx context.Context, id model.ParticipantID) ([]*model.GameResult, error) {
	kinds := model.AllGameKinds()
	keys := make([]string, len(kinds))
	for i, kind := range kinds {
		keys[i] = resultKey(id, kind)
	}
	return s.getResults(ctx, keys)
}

func (s *Storage) ListResults(ctx context.Context) ([]*model.GameResult, error) {
	keys, err := s.client.SMembers(ctx, resultsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	return s.getResults(ctx, keys)
}

func (s *Storage) DeleteAllResults(ctx context.Context) (int, error) {
	deleted, err := deleteAllResultsScript.Run(ctx, s.client, []string{resultsIndexKey()}).Int()
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// getResults fetches result hashes in one pipeline, skipping keys that no longer exist
func (s *Storage) getResults(ctx context.Context, keys []string) ([]*model.GameResult, error) {
	if len(keys) == 0 {
		return []*model.GameResult{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HGetAll(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	results := make([]*model.GameResult, 0, len(keys))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue // Removed by a concurrent reset
		}
		r, err := resultFromHash(fields)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func resultArgs(r *model.GameResult) []any {
	return []any{
		string(r.ParticipantID),
		string(r.Kind),
		strconv.Itoa(r.Score),
		strconv.FormatInt(r.SubmittedAt.UnixNano(), 10),
	}
}

func resultFromHash(fields map[string]string) (*model.GameResult, error) {
	score, err := strconv.Atoi(fields[fieldScore])
	if err != nil {
		return nil, fmt.Errorf("parse score: %w", err)
	}
	attempts, err := strconv.Atoi(fields[fieldAttempts])
	if err != nil {
		return nil, fmt.Errorf("parse attempts: %w", err)
	}
	nanos, err := strconv.ParseInt(fields[fieldSubmittedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse submitted_at: %w", err)
	}

	return &model.GameResult{
		ParticipantID: model.ParticipantID(fields[fieldParticipantID]),
		Kind:          model.GameKind(fields[fieldKind]),
		Score:         score,
		Attempts:      attempts,
		SubmittedAt:   time.Unix(0, nanos).UTC(),
	}, nil
}
