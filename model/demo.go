package model

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/Ngone6325/gofac/v2"
)

// Demo exercises every sample service through two scopes of c and prints
// what it observes to out. Files are written under dir.
func Demo(ctx context.Context, c *gofac.Container, out io.Writer, dir string) error {
	scope1 := c.NewScope()
	scope2 := c.NewScope()

	// ==================== Singleton ====================
	repo1, err := gofac.ScopeGet[IUserRepo](scope1)
	if err != nil {
		return err
	}
	repo2, err := gofac.ScopeGet[IUserRepo](scope2)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "[singleton] UserRepo shared across scopes: %v\n", repo1.GetRepoUUID() == repo2.GetRepoUUID())

	// ==================== Transient ====================
	svc1, err := gofac.ScopeGet[IUserService](scope1)
	if err != nil {
		return err
	}
	svc2, err := gofac.ScopeGet[IUserService](scope1)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "[transient] UserService %s, new per resolve: %v, same repo: %v\n",
		svc1.GetUserName(), svc1 != svc2, svc1.GetRepoUUID() == svc2.GetRepoUUID())

	// ==================== Scoped ====================
	log1a, err := gofac.ScopeGet[IUserLog](scope1)
	if err != nil {
		return err
	}
	log1b, err := gofac.ScopeGet[IUserLog](scope1)
	if err != nil {
		return err
	}
	log2, err := gofac.ScopeGet[IUserLog](scope2)
	if err != nil {
		return err
	}
	log1a.LogUserID(repo1.GetUserID())
	fmt.Fprintf(out, "[scoped] UserLog same in scope: %v, distinct across scopes: %v, entries: %d/%d\n",
		log1a.GetLogUUID() == log1b.GetLogUUID(), log1a.GetLogUUID() != log2.GetLogUUID(),
		len(log1b.Entries()), len(log2.Entries()))

	// ==================== Services ====================
	health, err := gofac.ScopeGet[IHealthService](scope1)
	if err != nil {
		return err
	}
	h := health.Health()
	fmt.Fprintf(out, "[health] %s %s\n", h.Status, h.Version)

	contracts, err := gofac.ScopeGet[IContractService](scope1)
	if err != nil {
		return err
	}
	id := "a-1"
	resp := contracts.Handle(ctx, Contract{Name: "demo", Access: []AccessEntry{{Timestamp: 1700000000, ID: &id}, {Timestamp: 1700000001}}})
	fmt.Fprintf(out, "[contract] %d %s\n", resp.Status, resp.Message)
	resp = contracts.Handle(ctx, Contract{Name: "empty"})
	fmt.Fprintf(out, "[contract] %d %s\n", resp.Status, resp.Message)

	files, err := gofac.ScopeGet[ISimpleFileService](scope1)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "gofac-demo", "hello.txt")
	files.Save(path, "hello from gofac")
	if err := files.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(out, "[file] saved %s\n", path)

	return nil
}
