package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"salescrm/internal/domain"
	"salescrm/internal/modules/accounts"
	"salescrm/internal/modules/activities"
	"salescrm/internal/modules/contacts"
	"salescrm/internal/modules/leads"
	"salescrm/internal/modules/notify"
	"salescrm/internal/modules/opportunities"
	"salescrm/internal/modules/session"
	"salescrm/internal/modules/workflows"
	"salescrm/internal/pkg/apperr"
	"salescrm/internal/repository"
)

func newSeedCmd(c *cli) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo user with sample records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := seed(cmd.Context(), c.db, email, password, c.log); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s / %s\n", email, password)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "demo@salescrm.local", "demo user email")
	cmd.Flags().StringVar(&password, "password", "demo1234", "demo user password")
	return cmd
}

var errAlreadySeeded = errors.New("demo user already exists")

// seed writes through the entity services so the sample data gets the
// same defaults and ownership stamps as API writes.
func seed(ctx context.Context, db *repository.DB, email, password string, log *zap.Logger) error {
	users := repository.NewUserRepository(db)
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("%w: %s", errAlreadySeeded, email)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &domain.User{Email: email, PasswordHash: string(hash), EmailConfirmed: true}
	if err := users.Create(ctx, user, ""); err != nil {
		return err
	}
	p := session.Principal{UserID: user.ID, Email: user.Email, SessionID: "seed"}
	sink := notify.Discard{}

	accountSvc := accounts.NewService(repository.NewAccountRepository(db), sink, log)
	contactSvc := contacts.NewService(repository.NewContactRepository(db), sink, log)
	leadSvc := leads.NewService(repository.NewLeadRepository(db), sink, log)
	oppSvc := opportunities.NewService(repository.NewOpportunityRepository(db), sink, log)
	activitySvc := activities.NewService(repository.NewActivityRepository(db), sink, log)
	workflowSvc := workflows.NewService(repository.NewWorkflowRepository(db), sink, log)

	return db.Transaction(ctx, func(ctx context.Context) error {
		acme, err := accountSvc.Create(ctx, p, accounts.CreateAccountRequest{
			Name: "Acme Corp", Type: domain.AccountCustomer, Industry: domain.Str("Manufacturing"),
			AnnualRevenue: ptr(12_000_000.0), EmployeeCount: ptr(240),
		})
		if err != nil {
			return err
		}
		globex, err := accountSvc.Create(ctx, p, accounts.CreateAccountRequest{
			Name: "Globex", Type: domain.AccountProspect, Industry: domain.Str("Energy"),
		})
		if err != nil {
			return err
		}
		if _, err := accountSvc.Create(ctx, p, accounts.CreateAccountRequest{
			Name: "Initech", Type: domain.AccountPartner, Website: domain.Str("https://initech.example"),
		}); err != nil {
			return err
		}

		jane, err := contactSvc.Create(ctx, p, contacts.CreateContactRequest{
			AccountID: &acme.ID, FirstName: "Jane", LastName: "Cooper",
			Email: domain.Str("jane.cooper@acme.example"), Title: domain.Str("VP Operations"),
		})
		if err != nil {
			return err
		}
		if _, err := contactSvc.Create(ctx, p, contacts.CreateContactRequest{
			AccountID: &globex.ID, FirstName: "Hank", LastName: "Scorpio",
			Email: domain.Str("hank@globex.example"), Title: domain.Str("CEO"),
		}); err != nil {
			return err
		}

		for _, l := range []leads.CreateLeadRequest{
			{FirstName: "Ana", LastName: "Ruiz", Company: domain.Str("Ruiz Logistics"), Rating: domain.RatingHot, LeadSource: domain.Str("Web")},
			{FirstName: "Bo", LastName: "Lee", Company: domain.Str("Lee & Sons"), Status: domain.LeadContacted},
			{FirstName: "Cy", LastName: "Ng", Email: domain.Str("cy.ng@example.com"), Rating: domain.RatingCold},
		} {
			if _, err := leadSvc.Create(ctx, p, l); err != nil {
				return err
			}
		}

		deal, err := oppSvc.Create(ctx, p, opportunities.CreateOpportunityRequest{
			Name: "Acme plant retrofit", AccountID: acme.ID, ContactID: &jane.ID,
			Amount: ptr(85_000.0), Stage: domain.StageProposal, Probability: ptr(60),
		})
		if err != nil {
			return err
		}
		if _, err := oppSvc.Create(ctx, p, opportunities.CreateOpportunityRequest{
			Name: "Globex pilot", AccountID: globex.ID, Amount: ptr(12_500.0),
		}); err != nil {
			return err
		}

		if _, err := activitySvc.Create(ctx, p, activities.CreateActivityRequest{
			Type: domain.ActivityCall, Subject: "Review retrofit proposal", Priority: domain.PriorityHigh,
			AccountID: &acme.ID, ContactID: &jane.ID, OpportunityID: &deal.ID,
		}); err != nil {
			return err
		}

		_, err = workflowSvc.Create(ctx, p, workflows.CreateWorkflowRequest{
			Name:              "Follow up hot leads",
			EntityType:        domain.WorkflowLead,
			TriggerType:       domain.TriggerAutomatic,
			TriggerConditions: datatypes.JSON(`{"rating":"hot"}`),
			Actions:           datatypes.JSON(`[{"type":"create_activity","subject":"Call within 24h"}]`),
			IsActive:          true,
		})
		return err
	})
}

func ptr[T any](v T) *T { return &v }
