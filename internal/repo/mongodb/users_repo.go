package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/socialapp/internal/apperr"
	"github.com/geocoder89/socialapp/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Email          string             `bson:"email"`
	Password       string             `bson:"password"`
	ProfilePicture string             `bson:"profilePicture"`
	DOB            string             `bson:"dob"`
	Hobbies        []string           `bson:"hobbies"`
}

func (d userDoc) toDomain() user.User {
	hobbies := d.Hobbies
	if hobbies == nil {
		hobbies = []string{}
	}

	return user.User{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Email:          d.Email,
		PasswordHash:   d.Password,
		ProfilePicture: d.ProfilePicture,
		DOB:            d.DOB,
		Hobbies:        hobbies,
	}
}

type UsersRepo struct {
	c *Client
}

func NewUsersRepo(c *Client) *UsersRepo {
	return &UsersRepo{c: c}
}

func (r *UsersRepo) FindUserByEmail(ctx context.Context, email string) (user.User, error) {
	var (
		doc   userDoc
		found bool
	)

	// a miss is a normal answer, not a store error
	err := r.c.obs.ObserveDB("users.find_by_email", func() error {
		coll, err := r.c.collection(usersCollection)
		if err != nil {
			return err
		}

		err = coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return mapErr(err)
		}

		found = true
		return nil
	})

	if err != nil {
		return user.User{}, err
	}

	if !found {
		return user.User{}, user.ErrNotFound
	}

	return doc.toDomain(), nil
}

func (r *UsersRepo) InsertUser(ctx context.Context, u user.User) (user.User, error) {
	hobbies := u.Hobbies
	if hobbies == nil {
		hobbies = []string{}
	}

	doc := userDoc{
		Name:           u.Name,
		Email:          u.Email,
		Password:       u.PasswordHash,
		ProfilePicture: u.ProfilePicture,
		DOB:            u.DOB,
		Hobbies:        hobbies,
	}

	var res *mongo.InsertOneResult

	err := r.c.obs.ObserveDB("users.insert", func() error {
		coll, err := r.c.collection(usersCollection)
		if err != nil {
			return err
		}

		res, err = coll.InsertOne(ctx, doc)
		return mapErr(err)
	})

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return user.User{}, apperr.Internal("Could not create user", fmt.Errorf("insert user: unexpected inserted id %v", res.InsertedID))
	}

	u.ID = id.Hex()
	u.Hobbies = hobbies

	return u, nil
}
