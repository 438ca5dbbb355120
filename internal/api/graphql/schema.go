// Package graphql exposes the account and post services over a GraphQL
// endpoint mirroring the REST surface: login, getPosts, createUser,
// createPost and editPost. Resolvers delegate every rule to the
// services, so the two transports share one validation path.
package graphql

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"

	"github.com/feedhub/feedhub-server/internal/apperror"
	"github.com/feedhub/feedhub-server/internal/logger"
	"github.com/feedhub/feedhub-server/internal/model"
)

// AuthService defines account signup and signin operations.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (model.User, error)
	SignIn(ctx context.Context, email, password string) (token string, userID uuid.UUID, err error)
}

// PostService defines the post lifecycle operations.
type PostService interface {
	Create(ctx context.Context, input model.PostInput, creatorID uuid.UUID) (model.Post, model.Creator, error)
	Get(ctx context.Context, postID uuid.UUID) (model.Post, error)
	Update(ctx context.Context, postID uuid.UUID, input model.PostInput, requesterID uuid.UUID) (model.Post, error)
	List(ctx context.Context, page int) (model.PostPage, error)
}

type postView struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`

	creatorID uuid.UUID
}

type userView struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`

	postIDs []uuid.UUID
}

type authDataView struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type postDataView struct {
	Posts     []postView `json:"posts"`
	TotalPost int        `json:"totalPost"`
}

func viewOfPost(post model.Post) postView {
	return postView{
		ID:        post.ID.String(),
		Title:     post.Title,
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		CreatedAt: post.CreatedAt.Format(time.RFC3339),
		UpdatedAt: post.UpdatedAt.Format(time.RFC3339),
		creatorID: post.CreatorID,
	}
}

func viewOfUser(user model.User) userView {
	return userView{
		ID:      user.ID.String(),
		Name:    user.Name,
		Email:   user.Email,
		Status:  user.Status,
		postIDs: user.Posts,
	}
}

func newSchema(
	authService AuthService,
	postService PostService,
	userStore model.UserStore,
	contextManager model.ContextManager,
	logger *logger.Logger,
) (graphql.Schema, error) {
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"_id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"email":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"status": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	postType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.Fields{
			"_id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"content":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"imageUrl":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"creator": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					post, ok := p.Source.(postView)
					if !ok {
						return nil, nil
					}
					user, err := userStore.GetByID(p.Context, post.creatorID)
					if err != nil {
						return nil, err
					}
					return viewOfUser(user), nil
				},
			},
		},
	})

	// Posts a user owns, resolved on demand. Posts deleted between the
	// list read and this resolution are skipped rather than failing the
	// whole query.
	userType.AddFieldConfig("posts", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(postType))),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			user, ok := p.Source.(userView)
			if !ok {
				return []postView{}, nil
			}
			posts := make([]postView, 0, len(user.postIDs))
			for _, postID := range user.postIDs {
				post, err := postService.Get(p.Context, postID)
				if err != nil {
					logger.Debug("GraphQL: skipping unresolvable post", "post_id", postID)
					continue
				}
				posts = append(posts, viewOfPost(post))
			}
			return posts, nil
		},
	})

	authDataType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthData",
		Fields: graphql.Fields{
			"token":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"userId": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	postDataType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PostData",
		Fields: graphql.Fields{
			"posts":     &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(postType)))},
			"totalPost": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	userInputType := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UserInputData",
		Fields: graphql.InputObjectConfigFieldMap{
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	postInputType := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PostInputData",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"content":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"imageUrl": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	requireIdentity := func(p graphql.ResolveParams) (model.Identity, error) {
		identity := contextManager.GetIdentityFromContext(p.Context)
		if !identity.IsAuthenticated {
			return model.Identity{}, apperror.NewUnauthorized("not authenticated")
		}
		return identity, nil
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQuery",
		Fields: graphql.Fields{
			"login": &graphql.Field{
				Type: graphql.NewNonNull(authDataType),
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					email, _ := p.Args["email"].(string)
					password, _ := p.Args["password"].(string)

					token, userID, err := authService.SignIn(p.Context, email, password)
					if err != nil {
						return nil, err
					}
					return authDataView{Token: token, UserID: userID.String()}, nil
				},
			},
			"getPosts": &graphql.Field{
				Type: graphql.NewNonNull(postDataType),
				Args: graphql.FieldConfigArgument{
					"page": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := requireIdentity(p); err != nil {
						return nil, err
					}

					page, _ := p.Args["page"].(int)

					result, err := postService.List(p.Context, page)
					if err != nil {
						return nil, err
					}

					posts := make([]postView, 0, len(result.Posts))
					for _, post := range result.Posts {
						posts = append(posts, viewOfPost(post))
					}
					return postDataView{Posts: posts, TotalPost: result.TotalItems}, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootMutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"userInput": &graphql.ArgumentConfig{Type: userInputType},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					input, _ := p.Args["userInput"].(map[string]interface{})
					name, _ := input["name"].(string)
					email, _ := input["email"].(string)
					password, _ := input["password"].(string)

					user, err := authService.SignUp(p.Context, name, email, password)
					if err != nil {
						return nil, err
					}
					return viewOfUser(user), nil
				},
			},
			"createPost": &graphql.Field{
				Type: graphql.NewNonNull(postType),
				Args: graphql.FieldConfigArgument{
					"postInput": &graphql.ArgumentConfig{Type: postInputType},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					identity, err := requireIdentity(p)
					if err != nil {
						return nil, err
					}

					post, _, err := postService.Create(p.Context, postInputFromArgs(p.Args), identity.UserID)
					if err != nil {
						return nil, err
					}
					return viewOfPost(post), nil
				},
			},
			"editPost": &graphql.Field{
				Type: graphql.NewNonNull(postType),
				Args: graphql.FieldConfigArgument{
					"postInput": &graphql.ArgumentConfig{Type: postInputType},
					"postId":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					identity, err := requireIdentity(p)
					if err != nil {
						return nil, err
					}

					rawPostID, _ := p.Args["postId"].(string)
					postID, err := uuid.Parse(rawPostID)
					if err != nil {
						return nil, apperror.NewNotFound("can't find post")
					}

					post, err := postService.Update(p.Context, postID, postInputFromArgs(p.Args), identity.UserID)
					if err != nil {
						return nil, err
					}
					return viewOfPost(post), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func postInputFromArgs(args map[string]interface{}) model.PostInput {
	input, _ := args["postInput"].(map[string]interface{})
	title, _ := input["title"].(string)
	content, _ := input["content"].(string)
	imageURL, _ := input["imageUrl"].(string)

	return model.PostInput{Title: title, Content: content, ImageURL: imageURL}
}
