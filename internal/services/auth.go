package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/worldkernel-backend/internal/data/repos"
	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"github.com/yungbote/worldkernel-backend/internal/normalization"
	"github.com/yungbote/worldkernel-backend/internal/pkg/ctxutil"
	"github.com/yungbote/worldkernel-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

const (
	minUsernameLen    = 3
	maxUsernameLen    = 30
	minPasswordLen    = 8
	maxDisplayNameLen = 100
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

type AuthConfig struct {
	JWTSecretKey string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	// BcryptCost of zero means bcrypt.DefaultCost.
	BcryptCost int
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName *string
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.Profile, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, rd *ctxutil.RequestData) error
	Authenticate(ctx context.Context, tokenString string) (*ctxutil.RequestData, error)
	AccessTTL() time.Duration
}

type authService struct {
	tx             Transactor
	log            *logger.Logger
	profileRepo    repos.ProfileRepo
	credentialRepo repos.UserCredentialRepo
	userTokenRepo  repos.UserTokenRepo
	cfg            AuthConfig
}

func NewAuthService(
	tx Transactor,
	log *logger.Logger,
	profileRepo repos.ProfileRepo,
	credentialRepo repos.UserCredentialRepo,
	userTokenRepo repos.UserTokenRepo,
	cfg AuthConfig,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		tx:             tx,
		log:            serviceLog,
		profileRepo:    profileRepo,
		credentialRepo: credentialRepo,
		userTokenRepo:  userTokenRepo,
		cfg:            cfg,
	}
}

func (as *authService) AccessTTL() time.Duration { return as.cfg.AccessTTL }

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.Profile, error) {
	username := normalization.ParseInputString(in.Username)
	if n := normalization.RuneLen(username); n < minUsernameLen || n > maxUsernameLen || !usernamePattern.MatchString(username) {
		return nil, pkgerrors.NewValidation("username", "Username must be 3-30 characters using a-z, 0-9, _ or -")
	}
	email := normalization.ParseInputString(in.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, pkgerrors.NewValidation("email", "Email address is invalid")
	}
	if normalization.RuneLen(in.Password) < minPasswordLen {
		return nil, pkgerrors.NewValidation("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}
	displayName := normalization.TrimmedPtr(in.DisplayName)
	if displayName != nil && normalization.RuneLen(*displayName) > maxDisplayNameLen {
		return nil, pkgerrors.NewValidation("display_name", fmt.Sprintf("Display name must be %d characters or less", maxDisplayNameLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), as.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	profile := &types.Profile{
		ID:          uuid.New(),
		Username:    username,
		DisplayName: displayName,
	}
	err = as.tx.Transaction(ctx, func(dbc dbctx.Context) error {
		if _, err := as.profileRepo.Create(dbc, profile); err != nil {
			return storeError("create profile", err)
		}
		if _, err := as.credentialRepo.Create(dbc, &types.UserCredential{
			ProfileID:    profile.ID,
			Email:        email,
			PasswordHash: string(hash),
		}); err != nil {
			return storeError("create credential", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrConflict) {
			return nil, pkgerrors.WithPublicMessage("username or email already registered", err)
		}
		as.log.Warn("Register failed", "error", err)
		return nil, err
	}
	as.log.Info("Registered profile", "user_id", profile.ID, "username", profile.Username)
	return profile, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = normalization.ParseInputString(email)
	if email == "" || password == "" {
		return nil, pkgerrors.WithPublicMessage("email and password are required", pkgerrors.ErrUnauthorized)
	}

	cred, err := as.credentialRepo.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return nil, storeError("load credential", err)
	}
	if cred == nil {
		return nil, pkgerrors.WithPublicMessage("invalid email or password", pkgerrors.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, pkgerrors.WithPublicMessage("invalid email or password", pkgerrors.ErrUnauthorized)
	}

	var pair *TokenPair
	err = as.tx.Transaction(ctx, func(dbc dbctx.Context) error {
		if err := as.pruneExpired(dbc, cred.ProfileID); err != nil {
			return err
		}
		p, err := as.issue(dbc, cred.ProfileID)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		as.log.Warn("Login failed", "error", err, "user_id", cred.ProfileID)
		return nil, err
	}
	return pair, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token required: %w", pkgerrors.ErrUnauthorized)
	}

	var (
		pair    *TokenPair
		expired bool
	)
	err := as.tx.Transaction(ctx, func(dbc dbctx.Context) error {
		existing, err := as.userTokenRepo.TakeRefreshToken(dbc, refreshToken)
		if err != nil {
			return storeError("take refresh token", err)
		}
		if existing == nil {
			return fmt.Errorf("unknown refresh token: %w", pkgerrors.ErrUnauthorized)
		}
		// Commit the delete of a stale row and report the expiry after.
		if existing.ExpiresAt.Before(time.Now()) {
			expired = true
			return nil
		}
		p, err := as.issue(dbc, existing.UserID)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, fmt.Errorf("refresh token expired: %w", pkgerrors.ErrUnauthorized)
	}
	return pair, nil
}

func (as *authService) Logout(ctx context.Context, rd *ctxutil.RequestData) error {
	if !rd.Authenticated() || rd.TokenString == "" {
		return fmt.Errorf("logout: %w", pkgerrors.ErrUnauthorized)
	}
	if _, err := as.userTokenRepo.DeleteByAccessToken(dbctx.Context{Ctx: ctx}, rd.TokenString); err != nil {
		return storeError("delete token", err)
	}
	as.log.Info("Logged out", "user_id", rd.UserID)
	return nil
}

// Authenticate verifies the signature and expiry, then requires the token row to still exist.
func (as *authService) Authenticate(ctx context.Context, tokenString string) (*ctxutil.RequestData, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token: %w", pkgerrors.ErrUnauthorized)
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.cfg.JWTSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token: %w", pkgerrors.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject: %w", pkgerrors.ErrUnauthorized)
	}

	session, err := as.userTokenRepo.GetByAccessToken(dbctx.Context{Ctx: ctx}, tokenString)
	if err != nil {
		return nil, storeError("load access token", err)
	}
	if session == nil || session.UserID != userID {
		return nil, fmt.Errorf("session revoked: %w", pkgerrors.ErrUnauthorized)
	}
	return &ctxutil.RequestData{TokenString: tokenString, UserID: userID}, nil
}

func (as *authService) issue(dbc dbctx.Context, userID uuid.UUID) (*TokenPair, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.cfg.AccessTTL)),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.cfg.JWTSecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    now.Add(as.cfg.RefreshTTL),
	}
	if err := as.userTokenRepo.Create(dbc, row); err != nil {
		return nil, storeError("create user token", err)
	}
	return &TokenPair{
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		ExpiresIn:    int(as.cfg.AccessTTL.Seconds()),
	}, nil
}

func (as *authService) pruneExpired(dbc dbctx.Context, userID uuid.UUID) error {
	if _, err := as.userTokenRepo.DeleteExpired(dbc, userID, time.Now()); err != nil {
		return storeError("prune user tokens", err)
	}
	return nil
}
