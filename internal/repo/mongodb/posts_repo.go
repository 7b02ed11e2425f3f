package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/geocoder89/socialapp/internal/apperr"
	"github.com/geocoder89/socialapp/internal/domain/post"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type postDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Email       string             `bson:"email"`
	Name        string             `bson:"name"`
	PostContent string             `bson:"postContent"`
	Images      []string           `bson:"images"`
	CreatedAt   time.Time          `bson:"createdAt"`
	Comments    bson.M             `bson:"comments"`
	Likes       []string           `bson:"likes"`
	Dislikes    []string           `bson:"dislikes"`
}

func postToDoc(p post.Post) postDoc {
	comments := bson.M{}
	for k, v := range p.Comments {
		comments[k] = v
	}

	return postDoc{
		Email:       p.Email,
		Name:        p.Name,
		PostContent: p.PostContent,
		Images:      nonNil(p.Images),
		CreatedAt:   p.CreatedAt,
		Comments:    comments,
		Likes:       nonNil(p.Likes),
		Dislikes:    nonNil(p.Dislikes),
	}
}

func (d postDoc) toDomain() post.Post {
	comments := make(map[string]any, len(d.Comments))
	for k, v := range d.Comments {
		comments[k] = v
	}

	return post.Post{
		ID:          d.ID.Hex(),
		Email:       d.Email,
		Name:        d.Name,
		PostContent: d.PostContent,
		Images:      nonNil(d.Images),
		CreatedAt:   d.CreatedAt.UTC(),
		Comments:    comments,
		Likes:       nonNil(d.Likes),
		Dislikes:    nonNil(d.Dislikes),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type PostsRepo struct {
	c *Client
}

func NewPostsRepo(c *Client) *PostsRepo {
	return &PostsRepo{c: c}
}

func (r *PostsRepo) InsertPost(ctx context.Context, p post.Post) (post.Post, error) {
	doc := postToDoc(p)

	var res *mongo.InsertOneResult

	err := r.c.obs.ObserveDB("posts.insert", func() error {
		coll, err := r.c.collection(postsCollection)
		if err != nil {
			return err
		}

		res, err = coll.InsertOne(ctx, doc)
		return mapErr(err)
	})

	if err != nil {
		return post.Post{}, err
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return post.Post{}, apperr.Internal("Could not create post", fmt.Errorf("insert post: unexpected inserted id %v", res.InsertedID))
	}

	created := doc.toDomain()
	created.ID = id.Hex()
	// bson datetimes hold milliseconds
	created.CreatedAt = p.CreatedAt.UTC().Truncate(time.Millisecond)

	return created, nil
}

func (r *PostsRepo) ListPostsByCreatedAtDesc(ctx context.Context) ([]post.Post, error) {
	var docs []postDoc

	err := r.c.obs.ObserveDB("posts.list", func() error {
		coll, err := r.c.collection(postsCollection)
		if err != nil {
			return err
		}

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

		cur, err := coll.Find(ctx, bson.D{}, opts)
		if err != nil {
			return mapErr(err)
		}

		return mapErr(cur.All(ctx, &docs))
	})

	if err != nil {
		return nil, err
	}

	out := make([]post.Post, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}

	return out, nil
}
