package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage/memory"
	"golang.org/x/crypto/bcrypt"
)

// seedDemoData loads a development fixture: the platform's own default
// tenant, one demo client tenant with a user, and a little content to click
// around in. Passwords are real bcrypt hashes so login works normally.
func seedDemoData(stores *memory.Stores, defaultSlug string) error {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if _, err := stores.Tenants.Create(ctx, &models.Tenant{
		Slug:         defaultSlug,
		Name:         "Qially",
		Branding:     map[string]string{"primaryColor": "#6366F1"},
		FeatureFlags: map[string]bool{"projects": true, "kb": true, "messages": true},
	}); err != nil {
		return err
	}

	if _, err := stores.Users.Create(ctx, &models.User{
		Email:        "admin@qially.com",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Name:         "John Doe",
	}); err != nil {
		return err
	}

	if _, err := stores.Tenants.Create(ctx, &models.Tenant{
		Slug:         "acme-corp",
		Name:         "Acme Corp",
		Branding:     map[string]string{"primaryColor": "#6366F1"},
		FeatureFlags: map[string]bool{"projects": true, "kb": true, "messages": true, "payments": true, "aiChat": true},
	}); err != nil {
		return err
	}

	client, err := stores.Users.Create(ctx, &models.User{
		Email:        "sarah@acmecorp.com",
		PasswordHash: string(hash),
		Role:         models.RoleClientUser,
		TenantSlug:   "acme-corp",
		Name:         "Sarah Miller",
	})
	if err != nil {
		return err
	}

	team, err := stores.Users.Create(ctx, &models.User{
		Email:        "dev@qially.com",
		PasswordHash: string(hash),
		Role:         models.RoleTeamMember,
		TenantSlug:   "acme-corp",
		Name:         "Dev Patel",
	})
	if err != nil {
		return err
	}

	due := time.Now().AddDate(0, 1, 0)
	project, err := stores.Projects.Create(ctx, &models.Project{
		TenantSlug:  "acme-corp",
		Title:       "Website Redesign",
		Description: "Complete redesign of company website",
		Status:      "in_progress",
		Progress:    65,
		DueDate:     &due,
	})
	if err != nil {
		return err
	}

	if _, err := stores.KbFiles.Create(ctx, &models.KbFile{
		TenantSlug: "acme-corp",
		Path:       "/brand/style-guide.md",
		Title:      "Brand Style Guide",
		Content:    "Complete brand guidelines including logo usage, colors, and typography.",
		Tags:       []string{"brand", "design", "guidelines"},
		Visibility: "private",
	}); err != nil {
		return err
	}

	if _, err := stores.Invoices.Create(ctx, &models.Invoice{
		TenantSlug:  "acme-corp",
		ProjectID:   project.ID,
		Number:      "INV-001",
		AmountCents: 385000,
		DueDate:     &due,
	}); err != nil {
		return err
	}

	_, err = stores.Conversations.Create(ctx, &models.Conversation{
		TenantSlug:     "acme-corp",
		Title:          "Website Redesign",
		ParticipantIDs: []uuid.UUID{client.ID, team.ID},
	})
	return err
}
