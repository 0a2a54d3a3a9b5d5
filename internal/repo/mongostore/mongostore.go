// Package mongostore implements the repo contracts on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sarahsindone/sbrp-application/internal/repo"
)

const (
	collReports         = "reports"
	collTemplates       = "report_templates"
	collClients         = "clients"
	collCases           = "cases"
	collDataCollections = "data_collections"
	collUsers           = "users"
	collSettings        = "settings"
	collCounters        = "counters"

	settingDefaultTemplate = "default_report_template"
)

// New builds a repo.Store on db. Closing the store disconnects client.
func New(client *mongo.Client, db *mongo.Database) *repo.Store {
	s := &repo.Store{
		Reports:         &reportRepo{coll: db.Collection(collReports), counters: db.Collection(collCounters)},
		Templates:       &templateRepo{coll: db.Collection(collTemplates), settings: db.Collection(collSettings)},
		Clients:         &clientRepo{coll: db.Collection(collClients)},
		Cases:           &caseRepo{coll: db.Collection(collCases)},
		DataCollections: &dataCollectionRepo{coll: db.Collection(collDataCollections)},
		Users:           &userRepo{coll: db.Collection(collUsers)},
	}
	return s.WithHooks(repo.StoreHooks{
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})
}

// EnsureIndexes creates the unique and lookup indexes the store relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		collReports: {
			{Keys: bson.D{{Key: "metadata.report_number", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "case_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collTemplates: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		collCases: {
			{Keys: bson.D{{Key: "case_number", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "client_id", Value: 1}}},
		},
		collDataCollections: {
			{Keys: bson.D{{Key: "case_id", Value: 1}}, Options: unique},
		},
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// mapErr translates driver errors into repo sentinels.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repo.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repo.ErrDuplicate, err)
	default:
		return err
	}
}

func byID(id string) bson.D { return bson.D{{Key: "_id", Value: id}} }

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

type reportRepo struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func (r *reportRepo) Create(ctx context.Context, rep *repo.Report) error {
	_, err := r.coll.InsertOne(ctx, rep)
	return mapErr(err)
}

func (r *reportRepo) Get(ctx context.Context, id string) (*repo.Report, error) {
	var out repo.Report
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *reportRepo) List(ctx context.Context, f repo.ReportFilter) ([]*repo.Report, error) {
	filter := bson.D{}
	if f.CaseID != "" {
		filter = append(filter, bson.E{Key: "case_id", Value: f.CaseID})
	}
	if f.ClientID != "" {
		filter = append(filter, bson.E{Key: "client_id", Value: f.ClientID})
	}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: f.Status})
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]*repo.Report, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (r *reportRepo) Update(ctx context.Context, rep *repo.Report) error {
	expected := rep.Revision
	next := rep.Clone()
	next.Revision = expected + 1

	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: rep.ID}, {Key: "revision", Value: expected}}, next)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, byID(rep.ID))
		if err != nil {
			return mapErr(err)
		}
		if n == 0 {
			return repo.ErrNotFound
		}
		return repo.ErrStale
	}
	rep.Revision = next.Revision
	return nil
}

func (r *reportRepo) Delete(ctx context.Context, id string, revision int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "revision", Value: revision}})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, byID(id))
		if err != nil {
			return mapErr(err)
		}
		if n == 0 {
			return repo.ErrNotFound
		}
		return repo.ErrStale
	}
	return nil
}

func (r *reportRepo) NextSequence(ctx context.Context, key string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx, byID(key), bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: 1}}}}, opts).Decode(&doc)
	if err != nil {
		return 0, mapErr(err)
	}
	return doc.Seq, nil
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

type templateRepo struct {
	coll     *mongo.Collection
	settings *mongo.Collection
}

func (r *templateRepo) Create(ctx context.Context, t *repo.ReportTemplate) error {
	_, err := r.coll.InsertOne(ctx, t)
	return mapErr(err)
}

func (r *templateRepo) Get(ctx context.Context, id string) (*repo.ReportTemplate, error) {
	var out repo.ReportTemplate
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	def, err := r.DefaultID(ctx)
	if err != nil {
		return nil, err
	}
	out.IsDefault = out.ID == def
	return &out, nil
}

func (r *templateRepo) List(ctx context.Context) ([]*repo.ReportTemplate, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]*repo.ReportTemplate, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	def, err := r.DefaultID(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range out {
		t.IsDefault = t.ID == def
	}
	return out, nil
}

func (r *templateRepo) Update(ctx context.Context, t *repo.ReportTemplate) error {
	res, err := r.coll.ReplaceOne(ctx, byID(t.ID), t)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *templateRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *templateRepo) DefaultID(ctx context.Context) (string, error) {
	var doc struct {
		TemplateID string `bson:"template_id"`
	}
	err := r.settings.FindOne(ctx, byID(settingDefaultTemplate)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", mapErr(err)
	}
	return doc.TemplateID, nil
}

func (r *templateRepo) SetDefault(ctx context.Context, id string) error {
	_, err := r.settings.UpdateOne(ctx,
		byID(settingDefaultTemplate),
		bson.D{{Key: "$set", Value: bson.D{{Key: "template_id", Value: id}}}},
		options.Update().SetUpsert(true),
	)
	return mapErr(err)
}

func (r *templateRepo) ClearDefault(ctx context.Context, id string) error {
	_, err := r.settings.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: settingDefaultTemplate}, {Key: "template_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "template_id", Value: ""}}}},
	)
	return mapErr(err)
}

// ---------------------------------------------------------------------------
// Clients, cases, data collections, users
// ---------------------------------------------------------------------------

type clientRepo struct{ coll *mongo.Collection }

func (r *clientRepo) Create(ctx context.Context, c *repo.Client) error {
	_, err := r.coll.InsertOne(ctx, c)
	return mapErr(err)
}

func (r *clientRepo) Get(ctx context.Context, id string) (*repo.Client, error) {
	var out repo.Client
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

type caseRepo struct{ coll *mongo.Collection }

func (r *caseRepo) Create(ctx context.Context, c *repo.Case) error {
	_, err := r.coll.InsertOne(ctx, c)
	return mapErr(err)
}

func (r *caseRepo) Get(ctx context.Context, id string) (*repo.Case, error) {
	var out repo.Case
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

type dataCollectionRepo struct{ coll *mongo.Collection }

func (r *dataCollectionRepo) Create(ctx context.Context, dc *repo.DataCollection) error {
	_, err := r.coll.InsertOne(ctx, dc)
	return mapErr(err)
}

func (r *dataCollectionRepo) Get(ctx context.Context, id string) (*repo.DataCollection, error) {
	var out repo.DataCollection
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *dataCollectionRepo) GetByCase(ctx context.Context, caseID string) (*repo.DataCollection, error) {
	var out repo.DataCollection
	if err := r.coll.FindOne(ctx, bson.D{{Key: "case_id", Value: caseID}}).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *dataCollectionRepo) Update(ctx context.Context, dc *repo.DataCollection) error {
	res, err := r.coll.ReplaceOne(ctx, byID(dc.ID), dc)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type userRepo struct{ coll *mongo.Collection }

func (r *userRepo) Create(ctx context.Context, u *repo.User) error {
	_, err := r.coll.InsertOne(ctx, u)
	return mapErr(err)
}

func (r *userRepo) Get(ctx context.Context, id string) (*repo.User, error) {
	var out repo.User
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repo.User, error) {
	var out repo.User
	if err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *userRepo) Update(ctx context.Context, u *repo.User) error {
	res, err := r.coll.ReplaceOne(ctx, byID(u.ID), u)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
