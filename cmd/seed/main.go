package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/domain"
	dirSvc "docvault/internal/domain/services/directory"
	docsySvc "docvault/internal/domain/services/docstore"
	"docvault/internal/repository/postgres"
	postgresStore "docvault/internal/repository/postgres/docstore"
	"docvault/internal/service/access"
	"docvault/internal/service/directory"
	"docvault/internal/service/docstore"
	"docvault/internal/service/extstorage"
	"docvault/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Demo accounts created by a full seed run. Dev convenience only; the
// production guard below keeps this binary away from prod databases.
const (
	seedTenantName = "Demo Workspace"

	seedAdminEmail    = "admin@docvault.dev"
	seedAdminPassword = "admin-password-1"

	seedMemberEmail    = "member@docvault.dev"
	seedMemberPassword = "member-password-1"

	seedViewerEmail    = "viewer@docvault.dev"
	seedViewerPassword = "viewer-password-1"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data (for use with shell scripts)")
	clearData := flag.Bool("clear-data", false, "Clear all folders, files and credentials (keep schema and accounts)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *clearData {
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	// Exit early if schema-only mode
	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Exit early if clear-data mode (just clear and exit)
	if *clearData {
		log.Println("🧹 Clearing existing folders, files and credentials...")
		if err := clearDocumentData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	tenantRepo := postgresStore.NewTenantRepository(repoConfig)
	userRepo := postgresStore.NewUserRepository(repoConfig)
	roleRepo := postgresStore.NewRoleRepository(repoConfig)
	folderRepo := postgresStore.NewFolderRepository(repoConfig)
	fileRepo := postgresStore.NewFileRepository(repoConfig)
	credRepo := postgresStore.NewCredentialRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Create services. Seeding goes through the service layer so the demo
	// data obeys the same validation and uniqueness rules as live traffic.
	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	store, err := storage.NewLocalAdapter(cfg.LocalStorageDir, logger)
	if err != nil {
		log.Fatalf("Failed to set up local storage: %v", err)
	}

	resolver := access.NewResolver(userRepo, roleRepo, logger)
	tree := docstore.NewTree(folderRepo, fileRepo, store, logger)
	// No external providers are needed for seeding local content.
	external := extstorage.NewManager(credRepo, nil, nil, logger)

	authService := directory.NewAuthService(userRepo, roleRepo, tenantRepo, txManager, issuer, logger)
	userService := directory.NewUserService(userRepo, roleRepo, logger)
	roleService := directory.NewRoleService(roleRepo, userRepo, logger)
	folderService := docstore.NewFolderService(folderRepo, resolver, tree, logger)
	fileService := docstore.NewFileService(fileRepo, folderRepo, store, external, resolver, tree, logger)

	log.Println("👤 Creating demo accounts...")
	admin, err := seedAccounts(ctx, authService, userService, roleService)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.Println("✅ Demo accounts already exist, nothing to do")
			return
		}
		log.Fatalf("Failed to seed accounts: %v", err)
	}

	log.Println("📁 Seeding folder tree and files...")
	if err := seedContent(ctx, admin, folderService, fileService, roleService); err != nil {
		log.Fatalf("Failed to seed content: %v", err)
	}

	log.Printf("✅ Admin login: %s / %s", seedAdminEmail, seedAdminPassword)
	log.Printf("✅ Member login: %s / %s", seedMemberEmail, seedMemberPassword)
	log.Printf("✅ Viewer login: %s / %s", seedViewerEmail, seedViewerPassword)
	log.Println("🎉 Seeding complete!")
}

// seedAccounts registers the demo tenant with an admin and invites a
// regular member and a read-only viewer. Invite tokens are consumed
// immediately so the accounts are ready to log in.
func seedAccounts(ctx context.Context, authService dirSvc.AuthService, userService dirSvc.UserService, roleService dirSvc.RoleService) (*dirSvc.AuthResponse, error) {
	admin, err := authService.Register(ctx, &dirSvc.RegisterRequest{
		Email:      seedAdminEmail,
		Password:   seedAdminPassword,
		FullName:   "Demo Admin",
		TenantName: seedTenantName,
	})
	if err != nil {
		return nil, err
	}
	adminID := admin.User.ID

	if _, err := roleService.CreateRole(ctx, adminID, &dirSvc.CreateRoleRequest{
		Name:        "Viewer",
		Description: "Read-only access to shared folders",
	}); err != nil {
		return nil, err
	}

	invites := []struct {
		email, fullName, password string
		roles                     []string
	}{
		{seedMemberEmail, "Demo Member", seedMemberPassword, nil},
		{seedViewerEmail, "Demo Viewer", seedViewerPassword, []string{"Viewer"}},
	}
	for _, inv := range invites {
		result, err := userService.InviteUser(ctx, adminID, &dirSvc.InviteUserRequest{
			Email:    inv.email,
			FullName: inv.fullName,
			Roles:    inv.roles,
		})
		if err != nil {
			return nil, err
		}
		if err := authService.SetPassword(ctx, &dirSvc.SetPasswordRequest{
			Token:    result.SetPasswordToken,
			Password: inv.password,
		}); err != nil {
			return nil, err
		}
		log.Printf("  ✓ Invited %s", inv.email)
	}

	return admin, nil
}

// seedContent builds a small folder tree with markdown files and grants
// the Viewer role read access to the shared "Projects" folder.
func seedContent(ctx context.Context, admin *dirSvc.AuthResponse, folderService docsySvc.FolderService, fileService docsySvc.FileService, roleService dirSvc.RoleService) error {
	adminID := admin.User.ID

	folderIDs := make(map[string]string)
	folders := []struct {
		name, parent string
	}{
		{"Projects", ""},
		{"Archive", "Projects"},
		{"Private", ""},
	}
	for _, f := range folders {
		req := &docsySvc.CreateFolderRequest{UserID: adminID, Name: f.name}
		if f.parent != "" {
			parentID := folderIDs[f.parent]
			req.ParentID = &parentID
		}
		folder, err := folderService.CreateFolder(ctx, req)
		if err != nil {
			return err
		}
		folderIDs[f.name] = folder.ID
		log.Printf("  ✓ Created folder %s", folder.Path)
	}

	files := []struct {
		name, folder, content string
	}{
		{"welcome.md", "", "# Welcome to DocVault\n\nUpload files, organize them into folders, and share\nfolders with your team through roles.\n"},
		{"roadmap.md", "Projects", "# Roadmap\n\n- Q3: external storage connectors\n- Q4: full-text search\n"},
		{"retrospective-2025.md", "Archive", "# 2025 Retrospective\n\nShipped the first multi-tenant release.\n"},
		{"notes.md", "Private", "# Private Notes\n\nOnly the owner and tenant admins can see this file.\n"},
	}
	for _, f := range files {
		req := &docsySvc.UploadFileRequest{
			UserID: adminID,
			Upload: &docsySvc.UploadedFile{
				Filename:    f.name,
				ContentType: "text/markdown",
				Size:        int64(len(f.content)),
				Content:     strings.NewReader(f.content),
			},
		}
		if f.folder != "" {
			folderID := folderIDs[f.folder]
			req.FolderID = &folderID
		}
		file, err := fileService.UploadFile(ctx, req)
		if err != nil {
			return err
		}
		log.Printf("  ✓ Uploaded %s", file.Path)
	}

	// Grant the Viewer role read access to the shared Projects folder.
	roles, err := roleService.ListRoles(ctx, adminID)
	if err != nil {
		return err
	}
	for i := range roles {
		if roles[i].Name != "Viewer" {
			continue
		}
		if _, err := roleService.UpdateRolePermissions(ctx, adminID, roles[i].ID, &dirSvc.UpdateRolePermissionsRequest{
			AllowedFolders: []string{folderIDs["Projects"]},
		}); err != nil {
			return err
		}
		log.Println("  ✓ Granted Viewer access to Projects")
	}

	return nil
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	_, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"")
	if err != nil {
		return err
	}

	// Create tenants table
	createTenants := `
		CREATE TABLE IF NOT EXISTS ` + tables.Tenants + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createTenants); err != nil {
		return err
	}

	// Create users table. Emails are unique across tenants so login can
	// resolve an account without a tenant hint.
	createUsers := `
		CREATE TABLE IF NOT EXISTS ` + tables.Users + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			tenant_id UUID NOT NULL REFERENCES ` + tables.Tenants + `(id) ON DELETE CASCADE,
			email TEXT NOT NULL UNIQUE,
			full_name TEXT NOT NULL,
			roles TEXT[] NOT NULL DEFAULT '{}',
			hashed_password TEXT,
			password_reset_token TEXT,
			token_expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createUsers); err != nil {
		return err
	}

	// Create roles table
	createRoles := `
		CREATE TABLE IF NOT EXISTS ` + tables.Roles + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			tenant_id UUID NOT NULL REFERENCES ` + tables.Tenants + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			allowed_folders TEXT[] NOT NULL DEFAULT '{}',
			allowed_files TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(tenant_id, name)
		)
	`
	if _, err := pool.Exec(ctx, createRoles); err != nil {
		return err
	}

	// Create folders table
	createFolders := `
		CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			tenant_id UUID NOT NULL REFERENCES ` + tables.Tenants + `(id) ON DELETE CASCADE,
			owner_id UUID NOT NULL REFERENCES ` + tables.Users + `(id) ON DELETE CASCADE,
			parent_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(tenant_id, parent_id, name)
		)
	`
	if _, err := pool.Exec(ctx, createFolders); err != nil {
		return err
	}

	// Create files table. storage_path is set for locally stored content,
	// external_file_id/external_storage_type for provider-backed files.
	createFiles := `
		CREATE TABLE IF NOT EXISTS ` + tables.Files + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			tenant_id UUID NOT NULL REFERENCES ` + tables.Tenants + `(id) ON DELETE CASCADE,
			owner_id UUID NOT NULL REFERENCES ` + tables.Users + `(id) ON DELETE CASCADE,
			folder_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE SET NULL,
			name TEXT NOT NULL,
			storage_path TEXT,
			external_file_id TEXT,
			external_storage_type TEXT,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			content_type TEXT NOT NULL DEFAULT 'application/octet-stream',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(tenant_id, folder_id, name)
		)
	`
	if _, err := pool.Exec(ctx, createFiles); err != nil {
		return err
	}

	// Create external credentials table
	createCredentials := `
		CREATE TABLE IF NOT EXISTS ` + tables.Credentials + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			tenant_id UUID NOT NULL REFERENCES ` + tables.Tenants + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES ` + tables.Users + `(id) ON DELETE CASCADE,
			provider TEXT NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			client_id TEXT NOT NULL DEFAULT '',
			client_secret TEXT NOT NULL DEFAULT '',
			token_expiry TIMESTAMPTZ,
			remote_folder_id TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(user_id, provider)
		)
	`
	if _, err := pool.Exec(ctx, createCredentials); err != nil {
		return err
	}

	// Create indexes. The partial unique indexes cover root-level name
	// uniqueness, which the composite UNIQUE constraints miss because
	// NULL parent/folder values never compare equal.
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `users_tenant_id ON ` + tables.Users + `(tenant_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `users_reset_token ON ` + tables.Users + `(password_reset_token) WHERE password_reset_token IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `roles_tenant_id ON ` + tables.Roles + `(tenant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_tenant_parent ON ` + tables.Folders + `(tenant_id, parent_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_root_unique ON ` + tables.Folders + `(tenant_id, name) WHERE parent_id IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `files_tenant_id ON ` + tables.Files + `(tenant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `files_tenant_folder ON ` + tables.Files + `(tenant_id, folder_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `files_root_unique ON ` + tables.Files + `(tenant_id, name) WHERE folder_id IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `credentials_tenant_provider ON ` + tables.Credentials + `(tenant_id, provider)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Credentials,
		tables.Files,
		tables.Folders,
		tables.Roles,
		tables.Users,
		tables.Tenants,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}

// clearDocumentData clears folders, files and external credentials while
// leaving tenants, users and roles in place. Stored file content is not
// touched; this is a database-level reset for development.
func clearDocumentData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	for _, table := range []string{tables.Credentials, tables.Files, tables.Folders} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
