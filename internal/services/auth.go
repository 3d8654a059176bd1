package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/data/repos"
	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/apierr"
	"github.com/havenapp/haven-backend/internal/pkg/ctxutil"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
	"github.com/havenapp/haven-backend/internal/pkg/pgerr"
)

type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, string, string, error)
	Login(ctx context.Context, email, password string) (*types.User, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
}

type authService struct {
	db     *gorm.DB
	log    *logger.Logger
	users  repos.UserRepo
	tokens repos.UserTokenRepo
	avatar AvatarService

	jwtSecretKey string
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

type jwtClaims struct {
	jwt.RegisteredClaims
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	tokenRepo repos.UserTokenRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		users:        userRepo,
		tokens:       tokenRepo,
		avatar:       avatarService,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
	}
}

func (s *authService) Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if email == "" || !strings.Contains(email, "@") {
		return nil, "", "", apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("a valid email is required"))
	}
	if len(password) < 8 {
		return nil, "", "", apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("password must be at least 8 characters"))
	}
	if firstName == "" || lastName == "" {
		return nil, "", "", apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("first and last name are required"))
	}

	exists, err := s.users.EmailExists(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return nil, "", "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, "", "", apierr.New(http.StatusConflict, "email_taken", fmt.Errorf("email already registered"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hashed),
		FirstName: firstName,
		LastName:  lastName,
	}

	// Avatar is best-effort: a missing font or bucket never blocks signup.
	if s.avatar != nil {
		if aErr := s.avatar.CreateAndUploadUserAvatar(dbctx.Context{Ctx: ctx}, user); aErr != nil {
			s.log.Warn("avatar generation failed (ignored)", "user_id", user.ID.String(), "error", aErr)
			user.AvatarBucketKey = ""
			user.AvatarURL = ""
		}
	}

	var accessToken, refreshToken string
	err = s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: txx}
		if _, cErr := s.users.Create(inner, []*types.User{user}); cErr != nil {
			if pgerr.IsUniqueViolation(cErr) {
				return apierr.New(http.StatusConflict, "email_taken", fmt.Errorf("email already registered"))
			}
			return fmt.Errorf("create user: %w", cErr)
		}
		tok, rTok, mErr := s.mintTokens(inner, user)
		if mErr != nil {
			return mErr
		}
		accessToken, refreshToken = tok, rTok
		return nil
	})
	if err != nil {
		return nil, "", "", err
	}
	return user, accessToken, refreshToken, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*types.User, string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", "", apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("email and password are required"))
	}

	user, err := s.users.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return nil, "", "", fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, "", "", apierr.New(http.StatusUnauthorized, "invalid_credentials", fmt.Errorf("invalid email or password"))
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", "", apierr.New(http.StatusUnauthorized, "invalid_credentials", fmt.Errorf("invalid email or password"))
	}

	var accessToken, refreshToken string
	err = s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: txx}
		if dErr := s.tokens.DeleteByUserID(inner, user.ID); dErr != nil {
			return fmt.Errorf("clear previous tokens: %w", dErr)
		}
		tok, rTok, mErr := s.mintTokens(inner, user)
		if mErr != nil {
			return mErr
		}
		accessToken, refreshToken = tok, rTok
		return nil
	})
	if err != nil {
		return nil, "", "", err
	}
	return user, accessToken, refreshToken, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", "", apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("refresh_token is required"))
	}

	var newAccess, newRefresh string
	err := s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: txx}

		row, fErr := s.tokens.GetByRefreshToken(inner, refreshToken)
		if fErr != nil {
			return fmt.Errorf("load refresh token: %w", fErr)
		}
		if row == nil {
			return apierr.New(http.StatusUnauthorized, "invalid_token", fmt.Errorf("unknown refresh token"))
		}
		if row.ExpiresAt.Before(time.Now()) {
			if dErr := s.tokens.DeleteByUserID(inner, row.UserID); dErr != nil {
				s.log.Warn("failed to delete expired token", "error", dErr)
			}
			return apierr.New(http.StatusUnauthorized, "invalid_token", fmt.Errorf("refresh token expired"))
		}

		users, uErr := s.users.GetByIDs(inner, []uuid.UUID{row.UserID})
		if uErr != nil {
			return fmt.Errorf("load user for refresh: %w", uErr)
		}
		if len(users) == 0 {
			return apierr.New(http.StatusUnauthorized, "invalid_token", fmt.Errorf("no user for refresh token"))
		}

		tok, gErr := s.generateAccessToken(users[0])
		if gErr != nil {
			return fmt.Errorf("generate access token: %w", gErr)
		}
		rTok := uuid.New().String()
		if rErr := s.tokens.RotateTokens(inner, row.ID, tok, rTok, time.Now().Add(s.refreshTTL)); rErr != nil {
			return fmt.Errorf("rotate tokens: %w", rErr)
		}
		newAccess, newRefresh = tok, rTok
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return newAccess, newRefresh, nil
}

func (s *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	if err := s.tokens.DeleteByUserID(dbctx.Context{Ctx: ctx}, rd.UserID); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}

	row, err := s.tokens.GetByAccessToken(dbctx.Context{Ctx: ctx}, tokenString)
	if err != nil {
		return ctx, fmt.Errorf("load token row: %w", err)
	}
	if row == nil {
		return ctx, fmt.Errorf("token not recognized")
	}

	rd := &ctxutil.RequestData{
		TokenString:  tokenString,
		RefreshToken: row.RefreshToken,
		UserID:       userID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (s *authService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *authService) generateAccessToken(user *types.User) (string, error) {
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecretKey))
}

func (s *authService) mintTokens(dbc dbctx.Context, user *types.User) (string, string, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}
	refreshToken := uuid.New().String()
	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.refreshTTL),
	}
	if _, err := s.tokens.Create(dbc, row); err != nil {
		return "", "", fmt.Errorf("create user token: %w", err)
	}
	return accessToken, refreshToken, nil
}
