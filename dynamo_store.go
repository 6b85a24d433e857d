package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// collectionKey is the partition key of the single item holding the
// whole collection.
const collectionKey = "WATCHLIST"

// saveAttempts bounds the optimistic-concurrency retry loop. Each round at
// least one concurrent writer succeeds, so contention resolves quickly.
const saveAttempts = 5

// DynamoStore implements Store with the whole collection in one DynamoDB
// item, mirroring the file backend's load-everything/save-everything
// contract. Saves carry a version number checked by a conditional write and
// retried on conflict, so concurrent mutations cannot overwrite each other.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// NewDynamoStore creates a DynamoDB client and returns a DynamoStore.
func NewDynamoStore(ctx context.Context, cfg Config) (*DynamoStore, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.AWSRegion))

	if cfg.DynamoEndpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(cfg.DynamoEndpoint))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &DynamoStore{
		client:    dynamodb.NewFromConfig(awsCfg),
		tableName: cfg.DynamoTableName,
	}, nil
}

func (s *DynamoStore) List(ctx context.Context) ([]Movie, error) {
	movies, _, err := s.load(ctx)
	return movies, err
}

func (s *DynamoStore) Create(ctx context.Context, title string) (Movie, error) {
	if title == "" {
		return Movie{}, ErrEmptyTitle
	}

	var created Movie
	err := s.mutate(ctx, func(movies []Movie) ([]Movie, error) {
		created = Movie{ID: nextID(movies), Title: title}
		return append(movies, created), nil
	})
	if err != nil {
		return Movie{}, err
	}

	return created, nil
}

func (s *DynamoStore) ToggleWatched(ctx context.Context, id int) (Movie, error) {
	var updated Movie
	err := s.mutate(ctx, func(movies []Movie) ([]Movie, error) {
		for i := range movies {
			if movies[i].ID == id {
				movies[i].Watched = !movies[i].Watched
				updated = movies[i]
				return movies, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return Movie{}, err
	}

	return updated, nil
}

func (s *DynamoStore) Delete(ctx context.Context, id int) error {
	return s.mutate(ctx, func(movies []Movie) ([]Movie, error) {
		kept := make([]Movie, 0, len(movies))
		for _, m := range movies {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		if len(kept) == len(movies) {
			return nil, ErrNotFound
		}
		return kept, nil
	})
}

// mutate runs a load-mutate-save cycle, retrying when another writer bumped
// the version between our read and our conditional write. Errors from the
// mutation itself (such as ErrNotFound) are returned without retrying.
func (s *DynamoStore) mutate(ctx context.Context, fn func([]Movie) ([]Movie, error)) error {
	for attempt := 0; attempt < saveAttempts; attempt++ {
		movies, version, err := s.load(ctx)
		if err != nil {
			return err
		}

		updated, err := fn(movies)
		if err != nil {
			return err
		}

		err = s.save(ctx, updated, version)
		if err == nil {
			return nil
		}

		var conflict *types.ConditionalCheckFailedException
		if !errors.As(err, &conflict) {
			return err
		}
	}

	return fmt.Errorf("saving movies: version conflict persisted after %d attempts", saveAttempts)
}

// load reads the collection item. A missing item is the empty state with
// version zero.
func (s *DynamoStore) load(ctx context.Context) ([]Movie, int64, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: collectionKey},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("GetItem: %w", err)
	}

	if out.Item == nil {
		return []Movie{}, 0, nil
	}

	movies, err := unmarshalMovies(out.Item["movies"])
	if err != nil {
		return nil, 0, err
	}

	var version int64
	if n, ok := out.Item["version"].(*types.AttributeValueMemberN); ok {
		version, err = strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("parsing version %q: %w", n.Value, err)
		}
	}

	return movies, version, nil
}

// save writes the collection item, accepting the write only if nobody else
// bumped the version since the caller's load.
func (s *DynamoStore) save(ctx context.Context, movies []Movie, expectedVersion int64) error {
	item := map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: collectionKey},
		"movies":    &types.AttributeValueMemberL{Value: marshalMovies(movies)},
		"version":   &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion+1, 10)},
		"updatedAt": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
	}

	condition := "attribute_not_exists(PK) OR version = :expected"

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: &condition,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion, 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("PutItem: %w", err)
	}

	return nil
}

func marshalMovies(movies []Movie) []types.AttributeValue {
	out := make([]types.AttributeValue, 0, len(movies))
	for _, m := range movies {
		out = append(out, &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"id":      &types.AttributeValueMemberN{Value: strconv.Itoa(m.ID)},
			"title":   &types.AttributeValueMemberS{Value: m.Title},
			"watched": &types.AttributeValueMemberBOOL{Value: m.Watched},
		}})
	}
	return out
}

// unmarshalMovies extracts the collection from the movies attribute.
func unmarshalMovies(attr types.AttributeValue) ([]Movie, error) {
	if attr == nil {
		return []Movie{}, nil
	}

	list, ok := attr.(*types.AttributeValueMemberL)
	if !ok {
		return nil, fmt.Errorf("movies attribute is not a list")
	}

	movies := make([]Movie, 0, len(list.Value))
	for _, item := range list.Value {
		entry, ok := item.(*types.AttributeValueMemberM)
		if !ok {
			return nil, fmt.Errorf("movie entry is not a map")
		}

		var m Movie
		if n, ok := entry.Value["id"].(*types.AttributeValueMemberN); ok {
			id, err := strconv.Atoi(n.Value)
			if err != nil {
				return nil, fmt.Errorf("parsing movie id %q: %w", n.Value, err)
			}
			m.ID = id
		}
		if str, ok := entry.Value["title"].(*types.AttributeValueMemberS); ok {
			m.Title = str.Value
		}
		if b, ok := entry.Value["watched"].(*types.AttributeValueMemberBOOL); ok {
			m.Watched = b.Value
		}

		movies = append(movies, m)
	}

	return movies, nil
}
