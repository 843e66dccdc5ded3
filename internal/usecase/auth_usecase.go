package usecase

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// accesstokenの有効期限
const accessTokenTTL = 24 * time.Hour

const bcryptCost = 12

// AuthUsecase は会員登録とログインだけを持つ。
// トークンはuser idとroleを運ぶ（ハンドラが本人確認に使う）。
type AuthUsecase struct {
	userRepo  repo.UserRepository
	jwtSecret []byte
}

func NewAuthUsecase(userRepo repo.UserRepository, jwtSecret string) *AuthUsecase {
	return &AuthUsecase{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type UserOutput struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginOutput struct {
	User        UserOutput `json:"user"`
	AccessToken string     `json:"access_token"`
	ExpiresIn   int        `json:"expires_in"`
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserOutput, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if name == "" || len(name) > 255 {
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if email == "" || !strings.Contains(email, "@") {
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if len(in.Password) < 8 {
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "password too short")
	}

	//既存メールは409
	if _, err := u.userRepo.FindByEmail(ctx, email); err == nil {
		return UserOutput{}, NewHTTPError(http.StatusConflict, "email already registered")
	} else if err != repo.ErrNotFound {
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := u.userRepo.Create(ctx, &user); err != nil {
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toUserOutput(user), nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if err == repo.ErrNotFound {
		//存在有無は漏らさない
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !user.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := u.issueToken(user, time.Now())
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginOutput{
		User:        toUserOutput(user),
		AccessToken: token,
		ExpiresIn:   int(accessTokenTTL.Seconds()),
	}, nil
}

func (u *AuthUsecase) issueToken(user model.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(u.jwtSecret)
}

func toUserOutput(user model.User) UserOutput {
	return UserOutput{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
}
