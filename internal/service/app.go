package service

// App bundles the command and query handlers handed to the embedding UI
// layer. This is the whole produced surface; there is no wire protocol.
type App struct {
	Courses     *CourseService
	CourseWork  *CourseWorkService
	Submissions *SubmissionService
	Attachments *AttachmentService
}

func NewApp(
	courses *CourseService,
	courseWork *CourseWorkService,
	submissions *SubmissionService,
	attachments *AttachmentService,
) *App {
	return &App{
		Courses:     courses,
		CourseWork:  courseWork,
		Submissions: submissions,
		Attachments: attachments,
	}
}
