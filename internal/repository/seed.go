package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"mailtriage/internal/model"
)

// SeedDemoData fills an empty database with a small demo inbox and task list.
// It does nothing when any email or task already exists.
func SeedDemoData(ctx context.Context, db *gorm.DB) error {
	emails := NewEmailRepository(db)
	tasks := NewTaskRepository(db)

	nEmails, err := emails.Count(ctx)
	if err != nil {
		return err
	}
	nTasks, err := tasks.Count(ctx)
	if err != nil {
		return err
	}
	if nEmails > 0 || nTasks > 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seedEmails := demoEmails()
		if err := tx.Create(&seedEmails).Error; err != nil {
			return fmt.Errorf("seed emails: %w", err)
		}
		seedTasks := demoTasks()
		if err := tx.Create(&seedTasks).Error; err != nil {
			return fmt.Errorf("seed tasks: %w", err)
		}
		log.Printf("[info] seeded %d demo emails and %d demo tasks", len(seedEmails), len(seedTasks))
		return nil
	})
}

var john = model.Address{Name: "John Doe", Email: "john.doe@gmail.com"}

func demoEmails() []model.Email {
	return []model.Email{
		{
			ID:      "email-1",
			From:    model.Address{Name: "Alice Johnson", Email: "alice@example.com"},
			To:      []model.Address{john},
			Subject: "Quarterly Report Review Meeting",
			Body: `Hi John,

I hope this email finds you well. I'd like to schedule a meeting to discuss the quarterly report before presenting it to the board next week.

Could you please review the attached draft and let me know your availability for a 30-minute discussion tomorrow or Wednesday?

Key points to discuss:
- Sales performance variance in the Western region
- New customer acquisition strategy results
- Budget allocation for Q3

Please also prepare a summary of your team's performance highlights.

Thanks,
Alice Johnson
VP of Operations`,
			Summary:   "Alice wants to schedule a meeting to discuss the quarterly report. She needs your review of the draft and availability for tomorrow or Wednesday.",
			Date:      mustTime("2025-04-20T10:30:00Z"),
			Read:      false,
			Important: true,
			Attachments: []model.Attachment{
				{ID: "attach-1", Name: "Q2-Report-Draft.pdf", Type: "application/pdf", Size: 2456789, URL: "#"},
			},
			Labels: []string{"work", "important"},
		},
		{
			ID:      "email-2",
			From:    model.Address{Name: "Project Sync", Email: "notifications@projectsync.com"},
			To:      []model.Address{john},
			Subject: "Task assigned: Complete user interview analysis",
			Body: `You've been assigned a new task:

Task: Complete user interview analysis
Due: April 23, 2025
Priority: High

Description:
Analyze the results of the 12 user interviews conducted last week and prepare a summary of key findings and recommendations.

Click here to view the task details and resources.

Project Sync Team`,
			Summary:   "New high-priority task assigned: Complete user interview analysis by April 23rd. Need to review 12 interviews and prepare findings summary.",
			Date:      mustTime("2025-04-19T16:45:00Z"),
			Read:      true,
			Important: true,
			Labels:    []string{"task", "high-priority"},
		},
		{
			ID:      "email-3",
			From:    model.Address{Name: "Marketing Team", Email: "marketing@company.com"},
			To:      []model.Address{{Name: "Product Team", Email: "product@company.com"}},
			Cc:      []model.Address{john},
			Subject: "New Feature Announcement Plan",
			Body: `Hello Product Team,

We're preparing the marketing materials for the new feature launch next month. Could you please provide:

1. Final list of features to highlight
2. Technical requirements for users
3. Screenshots or demo videos of the key functionality
4. Quote from the product team about the feature's impact

We need this information by end of week to stay on schedule.

Thanks,
Marketing Team`,
			Summary: "Marketing needs product details for new feature announcement: feature list, tech requirements, visuals, and team quote by end of week.",
			Date:    mustTime("2025-04-18T09:15:00Z"),
			Read:    true,
			Labels:  []string{"work"},
		},
		{
			ID:      "email-4",
			From:    model.Address{Name: "HR Department", Email: "hr@company.com"},
			To:      []model.Address{{Name: "All Staff", Email: "staff@company.com"}},
			Subject: "Reminder: Annual Benefits Enrollment Deadline",
			Body: `Dear Team Members,

This is a friendly reminder that the annual benefits enrollment period ends this Friday, April 25th at 5:00 PM.

If you haven't done so yet, please log into the HR portal to:
- Review your current benefits
- Update your selections for the next fiscal year
- Add or remove dependents if needed
- Update beneficiary information

If you need assistance, please contact HR support at ext. 4455 or reply to this email.

Best regards,
HR Department`,
			Summary: "Annual benefits enrollment deadline is this Friday (April 25th). Need to review and update selections in HR portal.",
			Date:    mustTime("2025-04-18T14:20:00Z"),
			Read:    true,
			Labels:  []string{"administrative"},
		},
		{
			ID:      "email-5",
			From:    model.Address{Name: "David Wang", Email: "david.wang@partner.org"},
			To:      []model.Address{john},
			Subject: "Collaboration Proposal: AI Ethics Framework",
			Body: `Hi John,

Following our conversation at the tech conference last month, I'd like to propose a collaboration between our organizations on developing an ethical framework for AI implementation in healthcare.

Our team has been researching this area for the past year, and your expertise in data privacy would be invaluable. I believe together we could create guidelines that could become an industry standard.

Are you interested in discussing this further? I'm available next week for an initial call to explore the idea.

Best regards,
David Wang
Director of AI Ethics
Partner Organization`,
			Summary:   "David Wang is proposing a collaboration on an AI ethics framework for healthcare, leveraging your data privacy expertise. He wants to schedule a call next week.",
			Date:      mustTime("2025-04-17T11:05:00Z"),
			Read:      false,
			Important: true,
			Labels:    []string{"partnership", "important"},
		},
	}
}

func demoTasks() []model.Task {
	task := func(id, title string, p model.Priority, due model.Date, emailID, created string) model.Task {
		return model.Task{
			ID:        id,
			Title:     title,
			Priority:  p,
			DueDate:   &due,
			EmailID:   &emailID,
			CreatedAt: mustTime(created),
		}
	}
	return []model.Task{
		task("task-1", "Review quarterly report draft", model.PriorityMedium, model.NewDate(2025, time.April, 21), "email-1", "2025-04-20T10:35:00Z"),
		task("task-2", "Complete user interview analysis", model.PriorityHigh, model.NewDate(2025, time.April, 23), "email-2", "2025-04-19T16:50:00Z"),
		task("task-3", "Provide marketing team with feature details", model.PriorityMedium, model.NewDate(2025, time.April, 24), "email-3", "2025-04-18T10:00:00Z"),
		task("task-4", "Update benefits selections", model.PriorityLow, model.NewDate(2025, time.April, 25), "email-4", "2025-04-18T14:30:00Z"),
		task("task-5", "Respond to collaboration proposal", model.PriorityHigh, model.NewDate(2025, time.April, 22), "email-5", "2025-04-17T11:15:00Z"),
	}
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
