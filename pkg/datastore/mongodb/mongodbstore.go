/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mongodb

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scoir/procyon/pkg/datastore"
)

type Config struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// Provider represents a Mongo DB implementation of the datastore.Provider interface
type Provider struct {
	db     *mongo.Database
	stores map[string]*mongoDBStore
	sync.RWMutex
}

type mongoDBStore struct {
	collection *mongo.Collection
}

// NewProvider instantiates Provider
func NewProvider(config *Config) (*Provider, error) {
	if config == nil {
		return nil, errors.New("config missing")
	}

	tM := reflect.TypeOf(bson.M{})
	reg := bson.NewRegistryBuilder().RegisterTypeMapEntry(bsontype.EmbeddedDocument, tM).Build()
	clientOpts := options.Client().SetRegistry(reg).ApplyURI(config.URL)

	mongoClient, err := mongo.NewClient(clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "error creating mongo client")
	}

	err = mongoClient.Connect(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to mongo")
	}
	db := mongoClient.Database(config.Database)

	p := &Provider{
		db:     db,
		stores: map[string]*mongoDBStore{}}

	return p, nil
}

// OpenStore opens and returns the collection for given name space.
func (p *Provider) OpenStore(name string) (datastore.Store, error) {
	p.Lock()
	defer p.Unlock()

	if name == "" {
		return nil, errors.New("store name is required")
	}

	store := &mongoDBStore{
		collection: p.db.Collection(name),
	}

	p.stores[name] = store

	return store, nil
}

// Close closes the provider.
func (p *Provider) Close() error {
	p.Lock()
	defer p.Unlock()

	p.stores = make(map[string]*mongoDBStore)

	return nil
}

// CloseStore closes a previously opened store
func (p *Provider) CloseStore(name string) error {
	p.Lock()
	defer p.Unlock()

	_, exists := p.stores[name]
	if !exists {
		return nil
	}

	delete(p.stores, name)

	return p.db.Client().Disconnect(context.Background())
}

func (r *mongoDBStore) SavePresentationExchange(rec *datastore.PresentationExchange, reason string) error {
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	ctx := context.Background()
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"exchangeid": rec.ExchangeID},
		bson.M{"$set": rec},
		opts)
	if err != nil {
		return errors.Wrapf(err, "unable to save presentation exchange: %s", reason)
	}

	logrus.WithFields(logrus.Fields{
		"exchange_id": rec.ExchangeID,
		"thread_id":   rec.ThreadID,
		"state":       rec.State,
		"reason":      reason,
	}).Debug("saved presentation exchange")

	return nil
}

func (r *mongoDBStore) GetPresentationExchange(id string) (*datastore.PresentationExchange, error) {
	rec := &datastore.PresentationExchange{}

	err := r.collection.FindOne(context.Background(), bson.M{"exchangeid": id}).Decode(rec)
	if err == mongo.ErrNoDocuments {
		return nil, datastore.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to load presentation exchange")
	}

	return rec, nil
}

func (r *mongoDBStore) FindPresentationExchangeByThread(threadID string, c *datastore.ExchangeCriteria) (*datastore.PresentationExchange, error) {
	bc := bson.M{"threadid": threadID}
	if c != nil && c.ConnectionID != "" {
		bc["connectionid"] = c.ConnectionID
	}

	ctx := context.Background()
	results, err := r.collection.Find(ctx, bc, options.Find().SetLimit(2))
	if err != nil {
		return nil, errors.Wrap(err, "error trying to find presentation exchange")
	}

	var out []*datastore.PresentationExchange
	err = results.All(ctx, &out)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode presentation exchange")
	}

	switch len(out) {
	case 0:
		return nil, datastore.ErrNotFound
	case 1:
		return out[0], nil
	default:
		return nil, datastore.ErrAmbiguous
	}
}

func (r *mongoDBStore) ListPresentationExchange(c *datastore.ExchangeCriteria) (*datastore.PresentationExchangeList, error) {
	if c == nil {
		c = &datastore.ExchangeCriteria{
			Start:    0,
			PageSize: 10,
		}
	}

	bc := bson.M{}
	if c.ConnectionID != "" {
		bc["connectionid"] = c.ConnectionID
	}
	if c.Role != "" {
		bc["role"] = c.Role
	}
	if c.State != "" {
		bc["state"] = c.State
	}

	opts := &options.FindOptions{}
	opts = opts.SetSkip(int64(c.Start)).SetLimit(int64(c.PageSize))

	ctx := context.Background()
	count, err := r.collection.CountDocuments(ctx, bc)
	if err != nil {
		return nil, errors.Wrap(err, "error counting presentation exchanges")
	}

	results, err := r.collection.Find(ctx, bc, opts)
	if err != nil {
		return nil, errors.Wrap(err, "error trying to find presentation exchanges")
	}

	out := datastore.PresentationExchangeList{
		Count:     int(count),
		Exchanges: []*datastore.PresentationExchange{},
	}

	err = results.All(ctx, &out.Exchanges)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode presentation exchanges")
	}

	return &out, nil
}
