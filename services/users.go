package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bellapacxx/academy-backend/models"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxUsernameLength = 150
	msgUsernameTaken  = "A user with that username already exists."
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	validate        = validator.New()
)

// UserInput is a create or update request. Nil fields are left untouched.
type UserInput struct {
	Username *string
	Password *string
	Email    *string
	Image    *multipart.FileHeader
}

type UserService struct {
	db    *gorm.DB
	media *MediaStore
}

func NewUserService(db *gorm.DB, media *MediaStore) *UserService {
	return &UserService{db: db, media: media}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

// FindByUsername looks a user up ignoring case.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return findByUsername(s.db.WithContext(ctx), username)
}

func findByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := db.Where("username_lower = ?", strings.ToLower(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	return &user, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	verr := &ValidationError{}
	if in.Username == nil {
		verr.Add("username", "This field is required.")
	}
	if in.Password == nil {
		verr.Add("password", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user := &models.User{}
	if err := s.apply(ctx, user, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		_ = s.media.Remove(user.Image)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, usernameTakenError()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Update changes the user. A full update (partial false) requires the same
// fields as Create.
func (s *UserService) Update(ctx context.Context, user *models.User, in UserInput, partial bool) error {
	if !partial {
		verr := &ValidationError{}
		if in.Username == nil {
			verr.Add("username", "This field is required.")
		}
		if in.Password == nil {
			verr.Add("password", "This field is required.")
		}
		if err := verr.OrNil(); err != nil {
			return err
		}
	}

	oldImage := user.Image
	if err := s.apply(ctx, user, in); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		if user.Image != oldImage {
			_ = s.media.Remove(user.Image)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usernameTakenError()
		}
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}
	if user.Image != oldImage {
		_ = s.media.Remove(oldImage)
	}
	return nil
}

// Delete removes the user with their token and statistics. Users that are
// seated in a game are kept so game history stays intact.
func (s *UserService) Delete(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seats int64
		if err := tx.Model(&models.GamePlayer{}).Where("user_id = ?", user.ID).Count(&seats).Error; err != nil {
			return err
		}
		if seats > 0 {
			return ErrUserHasGames
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Token{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.PlayerStat{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		if errors.Is(err, ErrUserHasGames) {
			return err
		}
		return fmt.Errorf("delete user %d: %w", user.ID, err)
	}
	_ = s.media.Remove(user.Image)
	return nil
}

// apply validates in and copies it onto user without saving.
func (s *UserService) apply(ctx context.Context, user *models.User, in UserInput) error {
	verr := &ValidationError{}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		switch {
		case username == "":
			verr.Add("username", "This field may not be blank.")
		case utf8.RuneCountInString(username) > maxUsernameLength:
			verr.Add("username", "Ensure this field has no more than 150 characters.")
		case !usernamePattern.MatchString(username):
			verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		default:
			taken, err := s.usernameTaken(ctx, username, user.ID)
			if err != nil {
				return err
			}
			if taken {
				verr.Add("username", msgUsernameTaken)
			}
		}
		user.Username = username
	}

	if in.Password != nil && *in.Password == "" {
		verr.Add("password", "This field may not be blank.")
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := validate.Var(email, "omitempty,email"); err != nil {
			verr.Add("email", "Enter a valid email address.")
		}
		user.Email = email
	}

	if err := verr.OrNil(); err != nil {
		return err
	}

	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hash)
	}

	if in.Image != nil {
		name, err := s.media.SaveUserImage(in.Image)
		if err != nil {
			return err
		}
		user.Image = name
	}
	return nil
}

// usernameTakenError reports a username lost to a concurrent insert, caught
// by the unique index rather than usernameTaken.
func usernameTakenError() error {
	verr := &ValidationError{}
	verr.Add("username", msgUsernameTaken)
	return verr
}

func (s *UserService) usernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username_lower = ? AND id <> ?", strings.ToLower(username), exceptID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return count > 0, nil
}
