// Package mongostore keeps transactions and users in MongoDB, one collection
// per transaction kind ("incomes", "expenses") plus "users".
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

type transactionDoc struct {
	ID          string    `bson:"_id"`
	User        string    `bson:"user"`
	Title       string    `bson:"title"`
	AmountCents int64     `bson:"amountCents"`
	Category    string    `bson:"category"`
	Date        time.Time `bson:"date"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password"`
	CreatedAt    time.Time `bson:"createdAt"`
}

// Connect dials uri, verifies the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(database), now: time.Now}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	slog.InfoContext(ctx, "Connected to MongoDB", "database", database)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	for _, k := range core.Kinds() {
		_, err := s.collection(k).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "user", Value: 1}, {Key: "date", Value: -1}},
		})
		if err != nil {
			return fmt.Errorf("create %s index: %w", k.Plural(), err)
		}
	}
	_, err := s.db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	return nil
}

func (s *Store) collection(k core.Kind) *mongo.Collection {
	return s.db.Collection(k.Plural())
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	now := s.now().UTC()
	doc := transactionDoc{
		ID:          tx.ID,
		User:        tx.Owner,
		Title:       tx.Title,
		AmountCents: tx.Amount.Cents,
		Category:    tx.Category,
		Date:        tx.Date.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.collection(tx.Kind).InsertOne(ctx, doc); err != nil {
		return core.Transaction{}, fmt.Errorf("insert %s: %w", tx.Kind, err)
	}
	return doc.toCore(tx.Kind), nil
}

func (s *Store) DeleteTransaction(ctx context.Context, kind core.Kind, id string) error {
	res, err := s.collection(kind).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if res.DeletedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, kind core.Kind, id string) (core.Transaction, error) {
	var doc transactionDoc
	err := s.collection(kind).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get %s: %w", kind, err)
	}
	return doc.toCore(kind), nil
}

func (s *Store) ListTransactions(ctx context.Context, q store.Query, p store.Page) ([]core.Transaction, error) {
	opts := options.Find().SetSort(newestFirst())
	if p.Limit > 0 {
		opts.SetLimit(int64(p.Limit))
	}
	if p.Offset > 0 {
		opts.SetSkip(int64(p.Offset))
	}
	return s.find(ctx, q.Kind, matchFilter(q), opts)
}

func (s *Store) CountTransactions(ctx context.Context, q store.Query) (int64, error) {
	n, err := s.collection(q.Kind).CountDocuments(ctx, matchFilter(q))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", q.Kind, err)
	}
	return n, nil
}

func (s *Store) RecentTransactions(ctx context.Context, q store.Query, limit int) ([]core.Transaction, error) {
	opts := options.Find().SetSort(newestFirst()).SetLimit(int64(limit))
	return s.find(ctx, q.Kind, bson.D{{Key: "user", Value: q.Owner}}, opts)
}

func (s *Store) SumAmount(ctx context.Context, q store.Query) (core.Money, error) {
	rows, err := s.aggregate(ctx, q.Kind, sumPipeline(q, nil))
	if err != nil {
		return core.Money{}, fmt.Errorf("sum %s: %w", q.Kind, err)
	}
	if len(rows) == 0 {
		return core.Money{}, nil
	}
	return rows[0].money()
}

func (s *Store) SumByDay(ctx context.Context, q store.Query) ([]core.DayTotal, error) {
	key := bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$date"}}
	rows, err := s.aggregate(ctx, q.Kind, sumPipeline(q, key))
	if err != nil {
		return nil, fmt.Errorf("sum %s by day: %w", q.Kind, err)
	}
	out := make([]core.DayTotal, 0, len(rows))
	for _, row := range rows {
		total, err := row.money()
		if err != nil {
			return nil, err
		}
		out = append(out, core.DayTotal{Day: row.Key, Total: total})
	}
	return out, nil
}

func (s *Store) SumByCategory(ctx context.Context, q store.Query) ([]core.CategoryTotal, error) {
	rows, err := s.aggregate(ctx, q.Kind, sumPipeline(q, "$category"))
	if err != nil {
		return nil, fmt.Errorf("sum %s by category: %w", q.Kind, err)
	}
	out := make([]core.CategoryTotal, 0, len(rows))
	for _, row := range rows {
		total, err := row.money()
		if err != nil {
			return nil, err
		}
		out = append(out, core.CategoryTotal{Category: row.Key, Total: total})
	}
	return out, nil
}

func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	doc := userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        strings.ToLower(strings.TrimSpace(u.Email)),
		PasswordHash: u.PasswordHash,
		CreatedAt:    s.now().UTC(),
	}
	if _, err := s.db.Collection("users").InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return core.User{}, core.ErrDuplicateEmail
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return doc.toCore(), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *Store) GetUserByID(ctx context.Context, id string) (core.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (core.User, error) {
	var doc userDoc
	err := s.db.Collection("users").FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("find user: %w", err)
	}
	return doc.toCore(), nil
}

func (s *Store) find(ctx context.Context, kind core.Kind, filter bson.D, opts *options.FindOptions) ([]core.Transaction, error) {
	cur, err := s.collection(kind).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	out := make([]core.Transaction, len(docs))
	for i, doc := range docs {
		out[i] = doc.toCore(kind)
	}
	return out, nil
}

func (s *Store) aggregate(ctx context.Context, kind core.Kind, pipeline mongo.Pipeline) ([]groupRow, error) {
	cur, err := s.collection(kind).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []groupRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

type groupRow struct {
	Key   string        `bson:"_id"`
	Total bson.RawValue `bson:"total"`
}

// money reads the $sum result. MongoDB promotes an overflowing long sum to a
// double, which is reported as an overflow.
func (r groupRow) money() (core.Money, error) {
	if v, ok := r.Total.Int64OK(); ok {
		return core.Money{Cents: v}, nil
	}
	if v, ok := r.Total.Int32OK(); ok {
		return core.Money{Cents: int64(v)}, nil
	}
	return core.Money{}, core.ErrAmountOverflow
}

func matchFilter(q store.Query) bson.D {
	filter := bson.D{{Key: "user", Value: q.Owner}}
	date := bson.D{}
	if !q.Range.From.IsZero() {
		date = append(date, bson.E{Key: "$gte", Value: q.Range.From.UTC()})
	}
	if !q.Range.Until.IsZero() {
		date = append(date, bson.E{Key: "$lt", Value: untilMillis(q.Range.Until)})
	}
	if len(date) > 0 {
		filter = append(filter, bson.E{Key: "date", Value: date})
	}
	return filter
}

// untilMillis rounds an exclusive bound up to the next millisecond. BSON
// dates carry millisecond precision and the encoder truncates the rest.
func untilMillis(t time.Time) time.Time {
	ms := t.UnixMilli()
	if t.Sub(time.UnixMilli(ms)) > 0 {
		ms++
	}
	return time.UnixMilli(ms).UTC()
}

// sumPipeline groups matching records by key (nil for a single total) and
// sums amountCents, ordered by key.
func sumPipeline(q store.Query, key interface{}) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: matchFilter(q)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: key},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amountCents"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func newestFirst() bson.D {
	return bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}}
}

func (d transactionDoc) toCore(kind core.Kind) core.Transaction {
	return core.Transaction{
		ID:        d.ID,
		Owner:     d.User,
		Kind:      kind,
		Title:     d.Title,
		Amount:    core.Money{Cents: d.AmountCents},
		Category:  d.Category,
		Date:      d.Date.UTC(),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func (d userDoc) toCore() core.User {
	return core.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}
