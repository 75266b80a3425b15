package service

import (
	"sync"
	"time"

	"github.com/YyItRoad/ai-trade/internal/config"
	"github.com/YyItRoad/ai-trade/internal/xe"
	"github.com/YyItRoad/ai-trade/pkg/nostd"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// tokenExpiration 会话token有效期
const tokenExpiration = 24 * time.Hour

// AuthService 访问密钥认证：启动时对配置的密钥做bcrypt散列，
// 校验通过后签发内存态的会话token
type AuthService struct {
	logger  *zap.Logger
	keyHash []byte

	mu     sync.Mutex
	tokens map[string]time.Time
}

// NewAuthService 创建认证服务，配置中没有访问密钥时所有校验直接失败
func NewAuthService(logger *zap.Logger, conf *config.Config) *AuthService {
	var keyHash []byte
	if conf.Auth.AccessKey != "" {
		hash, err := nostd.BcryptEncode([]byte(conf.Auth.AccessKey))
		if err != nil {
			logger.Error("failed to hash access key", zap.Error(err))
		} else {
			keyHash = hash
		}
	} else {
		logger.Warn("access key not configured, all api requests will be rejected")
	}
	return &AuthService{
		logger:  logger,
		keyHash: keyHash,
		tokens:  make(map[string]time.Time),
	}
}

// VerifyAccessKey 校验访问密钥，通过后签发会话token
func (s *AuthService) VerifyAccessKey(accessKey string) (string, time.Time, error) {
	if len(s.keyHash) == 0 {
		return "", time.Time{}, xe.ErrInvalidAccessKey
	}
	if err := nostd.BcryptMatch(s.keyHash, []byte(accessKey)); err != nil {
		s.logger.Warn("access key verification failed")
		return "", time.Time{}, xe.ErrInvalidAccessKey
	}

	token := ulid.Make().String()
	expiresAt := time.Now().Add(tokenExpiration)

	s.mu.Lock()
	s.sweepLocked()
	s.tokens[token] = expiresAt
	s.mu.Unlock()

	return token, expiresAt, nil
}

// ValidateToken 校验会话token，过期的token当场删除
func (s *AuthService) ValidateToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.tokens[token]
	if !ok {
		return xe.ErrInvalidToken
	}
	if time.Now().After(expiresAt) {
		delete(s.tokens, token)
		return xe.ErrInvalidToken
	}
	return nil
}

// RevokeToken 注销会话token
func (s *AuthService) RevokeToken(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// sweepLocked 清理过期token，调用方必须持有锁
func (s *AuthService) sweepLocked() {
	now := time.Now()
	for token, expiresAt := range s.tokens {
		if now.After(expiresAt) {
			delete(s.tokens, token)
		}
	}
}
