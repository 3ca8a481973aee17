// Package spannerschema provisions Spanner databases from a DDL file. It backs
// the migrate command and the emulator-based end-to-end suite.
package spannerschema

import (
	"context"
	"fmt"
	"os"
	"strings"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	databasepb "cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	instancepb "cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Database identifies a Spanner database.
type Database struct {
	Project  string
	Instance string
	ID       string
}

// ParseDatabase splits projects/<p>/instances/<i>/databases/<d>.
func ParseDatabase(name string) (Database, error) {
	parts := strings.Split(name, "/")
	if len(parts) != 6 || parts[0] != "projects" || parts[2] != "instances" || parts[4] != "databases" ||
		parts[1] == "" || parts[3] == "" || parts[5] == "" {
		return Database{}, fmt.Errorf("malformed database name %q", name)
	}
	return Database{Project: parts[1], Instance: parts[3], ID: parts[5]}, nil
}

func (d Database) projectPath() string  { return "projects/" + d.Project }
func (d Database) instancePath() string { return d.projectPath() + "/instances/" + d.Instance }

// Name is the fully qualified database name.
func (d Database) Name() string { return d.instancePath() + "/databases/" + d.ID }

// Split turns a DDL script into statements. Lines starting with "--" are
// dropped and statements end at ";".
func Split(sql string) []string {
	var b strings.Builder
	for _, l := range strings.Split(strings.ReplaceAll(sql, "\r\n", "\n"), "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), "--") {
			continue
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
	var out []string
	for _, s := range strings.Split(b.String(), ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ReadStatements reads and splits the DDL file at path.
func ReadStatements(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	stmts := Split(string(b))
	if len(stmts) == 0 {
		return nil, fmt.Errorf("no DDL statements in %s", path)
	}
	return stmts, nil
}

// Admin wraps the instance and database admin clients.
type Admin struct {
	instances *instance.InstanceAdminClient
	databases *database.DatabaseAdminClient
}

func NewAdmin(ctx context.Context) (*Admin, error) {
	ic, err := instance.NewInstanceAdminClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("instance admin client: %w", err)
	}
	dc, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		_ = ic.Close()
		return nil, fmt.Errorf("database admin client: %w", err)
	}
	return &Admin{instances: ic, databases: dc}, nil
}

func (a *Admin) Close() {
	_ = a.databases.Close()
	_ = a.instances.Close()
}

// EnsureInstance creates the instance on the emulator config when it does
// not exist yet.
func (a *Admin) EnsureInstance(ctx context.Context, d Database) error {
	_, err := a.instances.GetInstance(ctx, &instancepb.GetInstanceRequest{Name: d.instancePath()})
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("get instance %s: %w", d.instancePath(), err)
	}
	op, err := a.instances.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     d.projectPath(),
		InstanceId: d.Instance,
		Instance: &instancepb.Instance{
			Config:      d.projectPath() + "/instanceConfigs/emulator-config",
			DisplayName: d.Instance,
			NodeCount:   1,
		},
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create instance %s: %w", d.instancePath(), err)
	}
	_, err = op.Wait(ctx)
	return err
}

// CreateDatabase creates d with stmts as its initial schema. An existing
// database gets the statements applied instead.
func (a *Admin) CreateDatabase(ctx context.Context, d Database, stmts []string) error {
	op, err := a.databases.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
		Parent:          d.instancePath(),
		CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", d.ID),
		ExtraStatements: stmts,
	})
	if status.Code(err) == codes.AlreadyExists {
		return a.Apply(ctx, d, stmts)
	}
	if err != nil {
		return fmt.Errorf("create database %s: %w", d.Name(), err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("create database %s: %w", d.Name(), err)
	}
	return nil
}

// Apply runs stmts against an existing database.
func (a *Admin) Apply(ctx context.Context, d Database, stmts []string) error {
	op, err := a.databases.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
		Database:   d.Name(),
		Statements: stmts,
	})
	if err != nil {
		return fmt.Errorf("update ddl %s: %w", d.Name(), err)
	}
	if err := op.Wait(ctx); err != nil {
		return fmt.Errorf("update ddl %s: %w", d.Name(), err)
	}
	return nil
}

func (a *Admin) Drop(ctx context.Context, d Database) error {
	return a.databases.DropDatabase(ctx, &databasepb.DropDatabaseRequest{Database: d.Name()})
}
