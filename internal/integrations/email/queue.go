package email

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mark-szabo/carwash/internal/domain"
)

// Queue очередь исходящих писем в Redis.
// Письма лежат в sorted set, score - unix-время, когда письмо можно отправлять.
// Саму отправку выполняет внешний mailer через Due.
type Queue struct {
	client       *redis.Client
	key          string
	from         string
	timeProvider TimeProvider
	log          Logger
}

// NewQueue создает новый экземпляр Queue
func NewQueue(client *redis.Client, key, from string, timeProvider TimeProvider, log Logger) *Queue {
	return &Queue{
		client:       client,
		key:          key,
		from:         from,
		timeProvider: timeProvider,
		log:          log,
	}
}

// envelope запись в очереди
type envelope struct {
	domain.Email
	From string `json:"from"`
}

// Send ставит письмо в очередь; delay откладывает момент отправки
func (q *Queue) Send(ctx context.Context, email domain.Email, delay time.Duration) error {
	if email.To == "" {
		return ErrInvalidEmail
	}

	if email.ID == "" {
		email.ID = uuid.NewString()
	}
	email.DueAt = q.timeProvider.Now().UTC().Add(delay)

	payload, err := json.Marshal(envelope{Email: email, From: q.from})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal email: %v", ErrInternal, err)
	}

	if err := q.client.ZAdd(ctx, q.key, redis.Z{
		Score:  float64(email.DueAt.Unix()),
		Member: payload,
	}).Err(); err != nil {
		return fmt.Errorf("%w: failed to enqueue email: %v", ErrInternal, err)
	}

	q.log.Info("Email queued: id=%s, to=%s, due=%s", email.ID, email.To, email.DueAt.Format(time.RFC3339))
	return nil
}

// Due забирает из очереди до limit писем, срок отправки которых наступил к now.
// Письмо возвращается только тому вызывающему, кому удалось удалить его из очереди.
func (q *Queue) Due(ctx context.Context, now time.Time, limit int64) ([]domain.Email, error) {
	members, err := q.client.ZRangeByScore(ctx, q.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read due emails: %v", ErrInternal, err)
	}

	emails := make([]domain.Email, 0, len(members))
	for _, member := range members {
		removed, err := q.client.ZRem(ctx, q.key, member).Result()
		if err != nil {
			return emails, fmt.Errorf("%w: failed to claim email: %v", ErrInternal, err)
		}
		if removed == 0 {
			// забрал другой consumer
			continue
		}

		var env envelope
		if err := json.Unmarshal([]byte(member), &env); err != nil {
			q.log.Error("Email queue: dropping malformed entry: %v", err)
			continue
		}
		emails = append(emails, env.Email)
	}

	return emails, nil
}

// Len количество писем в очереди
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.ZCard(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return n, nil
}
