package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/troop127/portal/internal/errdef"
	"github.com/troop127/portal/pkg/model"
	"golang.org/x/crypto/scrypt"
)

func NewService(repository Repository) *Service {
	return &Service{
		repository: repository,
	}
}

type Repository interface {
	save(ctx context.Context, user *model.User) error
	create(ctx context.Context, user *model.User) error
	findAll(ctx context.Context) ([]*model.User, error)
	findByEmail(ctx context.Context, email string) (*model.User, error)
	findById(ctx context.Context, id uint) (*model.User, error)
}

type Service struct {
	repository Repository
}

func (s Service) Save(ctx context.Context, user *model.User) error {
	return s.repository.save(ctx, user)
}

// FindOrCreate backs the Google sign-in flow. Unknown emails become new users
// with the UNASSIGNED role; known users get their name, picture and
// last-active timestamp refreshed on every sign-in.
func (s Service) FindOrCreate(ctx context.Context, email, name, imageURL string) (*model.User, error) {
	user, err := s.repository.findByEmail(ctx, email)
	if err != nil {
		if !errdef.IsNotFound(err) {
			return nil, err
		}

		user = &model.User{
			Email:      email,
			Name:       name,
			ImageURL:   imageURL,
			Role:       model.RoleUnassigned,
			LastActive: time.Now(),
		}
		err = s.repository.create(ctx, user)
		if err != nil {
			return nil, err
		}
		return user, nil
	}

	if name != "" {
		user.Name = name
	}
	if imageURL != "" {
		user.ImageURL = imageURL
	}
	user.LastActive = time.Now()

	err = s.repository.save(ctx, user)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// SignIn verifies an email/password pair. Only users provisioned with a
// password can sign in this way; everyone else authenticates through Google.
func (s Service) SignIn(ctx context.Context, email string, password string) (*model.User, error) {
	unauthorizedError := "invalid email and password combination"

	user, err := s.repository.findByEmail(ctx, email)
	if err != nil {
		if errdef.IsNotFound(err) {
			return nil, errdef.NewUnauthorized("%s", unauthorizedError)
		}
		return nil, err
	}

	if user.Password == "" {
		return nil, errdef.NewUnauthorized("%s", unauthorizedError)
	}

	match, err := comparePasswords(user.Password, password)
	if err != nil {
		return nil, fmt.Errorf("password hashing failed: %s", err)
	}

	if !match {
		return nil, errdef.NewUnauthorized("%s", unauthorizedError)
	}

	user.LastActive = time.Now()
	if err := s.repository.save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s Service) FindById(ctx context.Context, id uint) (*model.User, error) {
	return s.repository.findById(ctx, id)
}

// FindAll returns every user, administrators first, then by descending role
// privilege and name.
func (s Service) FindAll(ctx context.Context) ([]*model.User, error) {
	users, err := s.repository.findAll(ctx)
	if err != nil {
		return nil, err
	}

	roleOrder := map[string]int{
		model.RoleAdmin:      0,
		model.RoleAdult:      1,
		model.RoleScout:      2,
		model.RoleUnassigned: 3,
	}
	sort.SliceStable(users, func(i, j int) bool {
		if roleOrder[users[i].Role] != roleOrder[users[j].Role] {
			return roleOrder[users[i].Role] < roleOrder[users[j].Role]
		}
		return users[i].Name < users[j].Name
	})

	return users, nil
}

func (s Service) UpdateRole(ctx context.Context, id uint, role string) (*model.User, error) {
	if !model.IsValidRole(role) {
		return nil, errdef.NewBadRequest("invalid role %q", role)
	}

	user, err := s.repository.findById(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	err = s.repository.save(ctx, user)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateAnnotation sets the free-text admin note on a user. An empty
// annotation clears it.
func (s Service) UpdateAnnotation(ctx context.Context, id uint, annotation string) (*model.User, error) {
	user, err := s.repository.findById(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Annotation = annotation
	err = s.repository.save(ctx, user)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 32)
	_, err := rand.Read(salt)
	if err != nil {
		return "", err
	}

	// using recommended cost parameters from - https://godoc.org/golang.org/x/crypto/scrypt
	hash, err := scrypt.Key([]byte(password), salt, 32768, 8, 1, 32)
	if err != nil {
		return "", err
	}

	hashedPassword := fmt.Sprintf("%s.%s", hex.EncodeToString(hash), hex.EncodeToString(salt))

	return hashedPassword, nil
}

func comparePasswords(storedPassword string, suppliedPassword string) (bool, error) {
	passwordAndSalt := strings.Split(storedPassword, ".")
	if len(passwordAndSalt) != 2 {
		return false, fmt.Errorf("wrong password/salt format: %s", storedPassword)
	}

	salt, err := hex.DecodeString(passwordAndSalt[1])
	if err != nil {
		return false, fmt.Errorf("unable to verify user password")
	}

	hash, err := scrypt.Key([]byte(suppliedPassword), salt, 32768, 8, 1, 32)
	if err != nil {
		return false, err
	}

	return hex.EncodeToString(hash) == passwordAndSalt[0], nil
}
