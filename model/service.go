package model

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Ngone6325/gofac/v2/discovery"
)

// IUserRepo user repository (Singleton)
type IUserRepo interface {
	GetUserID() int64
	GetRepoUUID() string // address of the instance itself
}

// UserRepo implements IUserRepo.
type UserRepo struct {
	DBConfig string
	UUID     string
}

// NewUserRepo records its own pointer address so lifetimes are observable.
func NewUserRepo(logger *log.Logger) *UserRepo {
	logger.Debug("constructing", "service", "UserRepo")
	repo := &UserRepo{
		DBConfig: "mysql:127.0.0.1:3306/gofac?charset=utf8",
	}
	repo.UUID = fmt.Sprintf("%p", repo)
	return repo
}

func (r *UserRepo) GetUserID() int64    { return 10086 }
func (r *UserRepo) GetRepoUUID() string { return r.UUID }

// IUserService user service (Transient)
type IUserService interface {
	GetUserName() string
	GetRepoUUID() string
}

// UserService implements IUserService.
type UserService struct {
	Repo IUserRepo
	UUID string
}

func NewUserService(repo IUserRepo) *UserService {
	svc := &UserService{
		Repo: repo,
	}
	svc.UUID = fmt.Sprintf("%p", svc)
	return svc
}

func (s *UserService) GetUserName() string { return fmt.Sprintf("user_%d", s.Repo.GetUserID()) }
func (s *UserService) GetRepoUUID() string { return s.Repo.GetRepoUUID() }

// IUserLog per-scope user log (Scoped)
type IUserLog interface {
	LogUserID(id int64) string
	GetLogUUID() string
	Entries() []string
}

// UserLog is discovered through its tag; the zero value is ready to use.
type UserLog struct {
	discovery.Marker `gofac:"contract=model.IUserLog"`

	mu      sync.Mutex
	entries []string
}

func (l *UserLog) LogUserID(id int64) string {
	entry := fmt.Sprintf("user_log: user_id=%d", id)
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
	return entry
}

func (l *UserLog) GetLogUUID() string { return fmt.Sprintf("%p", l) }

func (l *UserLog) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}
