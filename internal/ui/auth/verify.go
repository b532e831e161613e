// verify.go — валидация ID-токенов Google через JWKS.
// Подпись проверяется ключами из https://www.googleapis.com/oauth2/v3/certs
// с фоновым обновлением.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/luomphoto/luom-selector/internal/domain/model"
)

// ErrInvalidToken — ID-токен не прошёл валидацию.
var ErrInvalidToken = errors.New("невалидный ID-токен")

// idTokenClaims — claims ID-токена Google.
type idTokenClaims struct {
	jwt.RegisteredClaims
	// Email — электронная почта пользователя.
	Email string `json:"email"`
	// EmailVerified — подтверждён ли email.
	EmailVerified bool `json:"email_verified"`
	// Name — отображаемое имя.
	Name string `json:"name,omitempty"`
}

// IDTokenVerifier — валидатор ID-токенов Google.
type IDTokenVerifier struct {
	jwks     keyfunc.Keyfunc
	clientID string
	issuers  []string
	leeway   time.Duration
	logger   *slog.Logger
}

// NewIDTokenVerifier создаёт валидатор с JWKS Google.
// clientID — ожидаемый aud токена (OAuth Client ID).
// refreshInterval — интервал фонового обновления JWKS-ключей.
func NewIDTokenVerifier(
	clientID string,
	refreshInterval time.Duration,
	logger *slog.Logger,
) (*IDTokenVerifier, error) {
	// JWKS Storage с фоновым обновлением.
	// NoErrorReturnFirstHTTPReq — стартуем даже если Google ещё недоступен.
	storage, err := jwkset.NewStorageFromHTTP(GoogleJWKSURL, jwkset.HTTPClientStorageOptions{
		Client:                    http.DefaultClient,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           refreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", GoogleJWKSURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	return &IDTokenVerifier{
		jwks:     k,
		clientID: clientID,
		issuers:  GoogleIssuers,
		leeway:   time.Minute,
		logger:   logger.With(slog.String("component", "id_token_verifier")),
	}, nil
}

// NewIDTokenVerifierWithKeyfunc создаёт валидатор с предоставленной keyfunc.
// Используется в тестах для подстановки mock JWKS.
func NewIDTokenVerifierWithKeyfunc(kf keyfunc.Keyfunc, clientID string, issuers []string, logger *slog.Logger) *IDTokenVerifier {
	return &IDTokenVerifier{
		jwks:     kf,
		clientID: clientID,
		issuers:  issuers,
		leeway:   time.Minute,
		logger:   logger.With(slog.String("component", "id_token_verifier")),
	}
}

// Verify валидирует ID-токен и возвращает identity пользователя.
// Проверяются: подпись (RS256), exp, aud == clientID, iss из списка
// допустимых issuers Google.
func (v *IDTokenVerifier) Verify(ctx context.Context, rawToken string) (*model.Identity, error) {
	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, v.jwks.KeyfuncCtx(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithAudience(v.clientID),
	)
	if err != nil {
		v.logger.Debug("ID-токен не прошёл валидацию",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	// Google выдаёт iss в двух вариантах, jwt.WithIssuer принимает один —
	// проверяем вручную.
	issuer, err := claims.GetIssuer()
	if err != nil || !slices.Contains(v.issuers, issuer) {
		v.logger.Debug("Неожиданный issuer в ID-токене", slog.String("issuer", issuer))
		return nil, fmt.Errorf("%w: неожиданный issuer", ErrInvalidToken)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: отсутствует sub", ErrInvalidToken)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: отсутствует email", ErrInvalidToken)
	}

	return &model.Identity{
		UID:         subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}, nil
}
