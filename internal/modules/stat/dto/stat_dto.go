package dto

import (
	"time"

	"github.com/google/uuid"
	"vocalstudio.app/backend/internal/entity"
	feedbackDto "vocalstudio.app/backend/internal/modules/feedback/dto"
	lessonDto "vocalstudio.app/backend/internal/modules/lesson/dto"
)

type RecentStudent struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	VoiceType *string   `json:"voice_type"`
	Level     *string   `json:"level"`
}

type TeacherUpcomingLesson struct {
	ID          uuid.UUID `json:"id"`
	StudentName string    `json:"student_name"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Duration    int       `json:"duration"`
}

type TeacherStats struct {
	TotalStudents       int64                   `json:"total_students"`
	UpcomingLessons     int64                   `json:"upcoming_lessons"`
	PendingFeedback     int64                   `json:"pending_feedback"`
	RecentStudents      []RecentStudent         `json:"recent_students"`
	UpcomingLessonsList []TeacherUpcomingLesson `json:"upcoming_lessons_list"`
}

type ProfileBrief struct {
	VoiceType *string `json:"voice_type"`
	Level     *string `json:"level"`
}

type RecentFeedback struct {
	ID        uuid.UUID `json:"id"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type StudentUpcomingLesson struct {
	ID          uuid.UUID `json:"id"`
	TeacherName string    `json:"teacher_name"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Duration    int       `json:"duration"`
	Location    *string   `json:"location"`
}

type StudentStats struct {
	Profile             ProfileBrief            `json:"profile"`
	UpcomingLessons     int64                   `json:"upcoming_lessons"`
	TotalFeedback       int64                   `json:"total_feedback"`
	RecentFeedback      []RecentFeedback        `json:"recent_feedback"`
	UpcomingLessonsList []StudentUpcomingLesson `json:"upcoming_lessons_list"`
}

// StudentProfileResponse is the student's own profile with both people
// attached.
type StudentProfileResponse struct {
	entity.StudentProfile
	Teacher *entity.UserSummary `json:"teacher"`
	Student *entity.UserSummary `json:"student"`
}

func NewStudentProfileResponse(p *entity.StudentProfile) *StudentProfileResponse {
	res := &StudentProfileResponse{
		StudentProfile: *p,
		Teacher:        p.Teacher.Summary(),
		Student:        p.User.Summary(),
	}
	res.StudentProfile.User = nil
	res.StudentProfile.Teacher = nil
	return res
}

// The student dashboard keeps the camelCase keys its client reads.
type DashboardStats struct {
	TotalLessons     int64   `json:"totalLessons"`
	CompletedLessons int64   `json:"completedLessons"`
	ScheduledLessons int64   `json:"scheduledLessons"`
	TotalFeedbacks   int64   `json:"totalFeedbacks"`
	AverageRating    float64 `json:"averageRating"`
}

type StudentDashboard struct {
	Profile         *StudentProfileResponse        `json:"profile"`
	Stats           DashboardStats                 `json:"stats"`
	UpcomingLessons []lessonDto.LessonResponse     `json:"upcomingLessons"`
	RecentFeedbacks []feedbackDto.FeedbackResponse `json:"recentFeedbacks"`
}
