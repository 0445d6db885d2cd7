package main

import (
	"fmt"
	"strings"
)

func DisplayIssues(issues []IssueRecord, header string) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("🎯 %s\n", header)
	fmt.Println(strings.Repeat("=", 80))

	for i, issue := range issues {
		fmt.Printf("\n%d. %s\n", i+1, issue.Title)
		fmt.Printf("   URL: %s\n", issue.HTMLURL)
		if labels := issue.LabelNames(); len(labels) > 0 {
			fmt.Printf("   Labels: %s\n", strings.Join(labels, ", "))
		}
		fmt.Printf("   Comments: %d\n", issue.Comments)
	}
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
}

func DisplayRepositoryGroups(result *RepositoryGroupResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("🌟 POPULAR REPOSITORIES WITH GOOD FIRST ISSUES")
	fmt.Println(strings.Repeat("=", 80))

	for i, group := range result.Repositories {
		fmt.Printf("\n%d. %s/%s (%d open good first issues)\n", i+1, group.Owner, group.Repo, len(group.Issues))
		for _, issue := range group.Issues {
			fmt.Printf("   - %s\n     %s\n", issue.Title, issue.HTMLURL)
		}
	}
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
}

func DisplayComplexity(title string, assessment *ComplexityAssessment) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("🔍 COMPLEXITY: %s\n", title)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Score:        %d/100\n", assessment.Score)
	fmt.Printf("Difficulty:   %s\n", assessment.Difficulty)
	fmt.Printf("Estimate:     %s\n", assessment.EstimatedHours)
	fmt.Printf("Confidence:   %.1f\n", assessment.Confidence)
	if len(assessment.SkillsRequired) > 0 {
		fmt.Printf("Skills:       %s\n", strings.Join(assessment.SkillsRequired, ", "))
	}
	if len(assessment.LearningOpportunities) > 0 {
		fmt.Printf("You'll learn: %s\n", strings.Join(assessment.LearningOpportunities, ", "))
	}
	fmt.Println(strings.Repeat("=", 80))
}

func DisplayRepositoryAssessment(assessment *RepositoryAssessment) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("🏗️  REPOSITORY ASSESSMENT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Main language:            %s\n", assessment.MainLanguage)
	if len(assessment.TechStack) > 0 {
		fmt.Printf("Tech stack:               %s\n", strings.Join(assessment.TechStack, ", "))
	}
	fmt.Printf("Complexity:               %d/10\n", assessment.Complexity)
	fmt.Printf("Contributor friendliness: %d/10\n", assessment.ContributorFriendliness)
	fmt.Printf("Good documentation:       %s\n", yesNo(assessment.HasGoodDocumentation))
	fmt.Printf("Has tests:                %s\n", yesNo(assessment.HasTests))
	fmt.Printf("Actively maintained:      %s\n", yesNo(assessment.ActivelyMaintained))
	fmt.Println(strings.Repeat("=", 80))
}

func DisplayProfile(profile *UserProfile) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("👤 PROFILE")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf("Contributions: %d (completion rate %.0f%%)\n", profile.TotalContributions, profile.CompletionRate*100)
	fmt.Printf("Difficulty preference: %s | Time availability: %s\n",
		profile.Preferences.DifficultyPreference, profile.Preferences.TimeAvailability)
	if len(profile.Preferences.PreferredLanguages) > 0 {
		fmt.Printf("Languages: %s\n", strings.Join(profile.Preferences.PreferredLanguages, ", "))
	}
	if len(profile.Preferences.LearningGoals) > 0 {
		fmt.Printf("Learning goals: %s\n", strings.Join(profile.Preferences.LearningGoals, ", "))
	}

	if len(profile.Skills) > 0 {
		fmt.Println("\nSkills:")
		for _, skill := range profile.Skills {
			fmt.Printf("  %-24s level %d  (%.1f hours)\n", skill.Skill, skill.Level, skill.Experience)
		}
	}

	if len(profile.History) > 0 {
		fmt.Println("\nRecent contributions:")
		start := len(profile.History) - 5
		if start < 0 {
			start = 0
		}
		for _, record := range profile.History[start:] {
			status := "✅"
			if !record.Completed {
				status = "⏳"
			}
			fmt.Printf("  %s %s (%s, %d min)\n", status, record.IssueURL, record.Difficulty, record.TimeSpent)
		}
	}
	fmt.Println(strings.Repeat("=", 80))
}

func DisplayRecommendations(issues []IssueRecord) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("🎯 RECOMMENDED FOR YOU")
	fmt.Println(strings.Repeat("=", 80))

	for i, issue := range issues {
		emoji := "✨"
		if issue.PersonalizedScore >= 80 {
			emoji = "🔥"
		} else if issue.PersonalizedScore >= 60 {
			emoji = "⭐"
		}

		fmt.Printf("\n%s %d. %s (score %.0f)\n", emoji, i+1, issue.Title, issue.PersonalizedScore)
		fmt.Printf("   URL: %s\n", issue.HTMLURL)
		if labels := issue.LabelNames(); len(labels) > 0 {
			fmt.Printf("   Labels: %s\n", strings.Join(labels, ", "))
		}
	}
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
}

func DisplayLearningPath(entries []LearningPathEntry) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("📚 LEARNING PATH")
	fmt.Println(strings.Repeat("=", 80))

	for _, entry := range entries {
		fmt.Printf("\n%s: level %d → %d (gap %d, about %s)\n",
			entry.Skill, entry.CurrentLevel, entry.TargetLevel, entry.Gap, entry.EstimatedTime)
		if len(entry.SuggestedIssueTypes) > 0 {
			fmt.Printf("  Try: %s\n", strings.Join(entry.SuggestedIssueTypes, ", "))
		}
	}
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
}

func DisplaySession(session *ContributionSession) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("🧭 SESSION: %s\n", session.IssueURL)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Repository: %s\n", session.RepositoryName)
	current := session.CurrentStep + 1
	if current > len(session.Steps) {
		current = len(session.Steps)
	}
	fmt.Printf("Progress:   %.0f%% (step %d of %d)\n", session.Progress, current, len(session.Steps))
	if len(session.SkillsBeingLearned) > 0 {
		fmt.Printf("Learning:   %s\n", strings.Join(session.SkillsBeingLearned, ", "))
	}

	fmt.Println("\nSteps:")
	for _, step := range session.Steps {
		marker := "[ ]"
		if step.IsCompleted {
			marker = "[x]"
		}
		fmt.Printf("  %s %s: %s (%s, %s)\n", marker, step.ID, step.Title, step.EstimatedTime, step.Difficulty)
	}

	if len(session.MentorNotes) > 0 {
		fmt.Println("\nNotes:")
		for _, note := range session.MentorNotes {
			fmt.Printf("  - %s\n", note)
		}
	}
	fmt.Println(strings.Repeat("=", 80))
}

func DisplaySessionSummary(session *ContributionSession, index int) {
	status := "in progress"
	if session.IsComplete() {
		status = "complete"
	}
	fmt.Printf("%d. %s — %.0f%% %s (started %s)\n",
		index, session.IssueURL, session.Progress, status, session.StartTime.Format("2006-01-02"))
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
