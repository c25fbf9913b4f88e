package services

import (
	"fmt"
	"log"
	"strconv"

	mail "github.com/go-mail/mail/v2"
	"github.com/hmizuno/conference-review-api/internal/config"
	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/repository"
)

// NotificationService sends best-effort email notifications. Delivery
// failures are logged and never propagated to the triggering request.
type NotificationService struct {
	dialer    *mail.Dialer
	from      string
	userRepo  repository.UserRepository
	paperRepo repository.PaperRepository
}

// NewNotificationService creates a NotificationService, or nil when SMTP
// is not configured.
func NewNotificationService(cfg *config.Config, userRepo repository.UserRepository, paperRepo repository.PaperRepository) *NotificationService {
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		log.Println("SMTP not configured, notifications disabled")
		return nil
	}

	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil || port == 0 {
		port = 587
	}

	dialer := mail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPassword)
	dialer.StartTLSPolicy = mail.OpportunisticStartTLS

	return &NotificationService{
		dialer:    dialer,
		from:      cfg.SMTPFrom,
		userRepo:  userRepo,
		paperRepo: paperRepo,
	}
}

func (s *NotificationService) send(to, subject, body string) {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Printf("Warning: failed to send notification to %s: %v", to, err)
	}
}

// NotifyNewAssignments emails each reviewer about their new assignments.
func (s *NotificationService) NotifyNewAssignments(conferenceID uint64, assignments []models.ReviewAssignment) {
	perReviewer := make(map[uint64]int)
	for _, a := range assignments {
		perReviewer[a.ReviewerID]++
	}

	for reviewerID, count := range perReviewer {
		reviewer, err := s.userRepo.FindByID(reviewerID)
		if err != nil {
			log.Printf("Warning: failed to resolve reviewer %d for notification: %v", reviewerID, err)
			continue
		}
		s.send(reviewer.Email,
			"New review assignments",
			fmt.Sprintf("Hello %s,\n\nYou have been assigned %d new paper(s) to review. Please log in to see your assignments.\n", reviewer.Name, count))
	}
}

// NotifyDecision emails a paper's authors about the recorded decision.
func (s *NotificationService) NotifyDecision(paper *models.Paper, verdict string) {
	authorIDs, err := s.paperRepo.AuthorIDs(paper.ID)
	if err != nil {
		log.Printf("Warning: failed to resolve authors of paper %d for notification: %v", paper.ID, err)
		return
	}

	for _, authorID := range authorIDs {
		author, err := s.userRepo.FindByID(authorID)
		if err != nil {
			log.Printf("Warning: failed to resolve author %d for notification: %v", authorID, err)
			continue
		}
		s.send(author.Email,
			fmt.Sprintf("Decision on %q", paper.Title),
			fmt.Sprintf("Hello %s,\n\nA decision has been recorded for your paper %q: %s. The reviews are now visible to you.\n", author.Name, paper.Title, verdict))
	}
}
