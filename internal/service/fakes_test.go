package service

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/ysxx86/classreport-go-api/internal/models"
	"github.com/ysxx86/classreport-go-api/internal/repository"
)

type memoryStudentRepo struct {
	students map[string]models.Student
}

func newMemoryStudentRepo(students ...models.Student) *memoryStudentRepo {
	repo := &memoryStudentRepo{students: make(map[string]models.Student)}
	for _, student := range students {
		repo.students[student.StudentID] = student
	}
	return repo
}

func (m *memoryStudentRepo) GetByStudentID(_ context.Context, studentID string) (models.Student, error) {
	student, ok := m.students[studentID]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (m *memoryStudentRepo) List(_ context.Context, _ repository.StudentFilter) ([]models.Student, error) {
	students := make([]models.Student, 0, len(m.students))
	for _, student := range m.students {
		students = append(students, student)
	}
	return students, nil
}

func (m *memoryStudentRepo) Create(_ context.Context, student *models.Student) error {
	m.students[student.StudentID] = *student
	return nil
}

func (m *memoryStudentRepo) Update(_ context.Context, student *models.Student) error {
	if _, ok := m.students[student.StudentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.students[student.StudentID] = *student
	return nil
}

func (m *memoryStudentRepo) Delete(_ context.Context, studentID string) error {
	if _, ok := m.students[studentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.students, studentID)
	return nil
}

type memoryGradeRepo struct {
	grades map[string]models.Grade // keyed by studentID + "|" + semester
}

func newMemoryGradeRepo(grades ...models.Grade) *memoryGradeRepo {
	repo := &memoryGradeRepo{grades: make(map[string]models.Grade)}
	for _, grade := range grades {
		repo.grades[grade.StudentID+"|"+grade.Semester] = grade
	}
	return repo
}

func (m *memoryGradeRepo) GetBySemester(_ context.Context, studentID, semester string) (models.Grade, error) {
	grade, ok := m.grades[studentID+"|"+semester]
	if !ok {
		return models.Grade{}, gorm.ErrRecordNotFound
	}
	return grade, nil
}

func (m *memoryGradeRepo) ListByStudent(_ context.Context, studentID string) ([]models.Grade, error) {
	var grades []models.Grade
	for _, grade := range m.grades {
		if grade.StudentID == studentID {
			grades = append(grades, grade)
		}
	}
	return grades, nil
}

func (m *memoryGradeRepo) Upsert(_ context.Context, grade *models.Grade) error {
	m.grades[grade.StudentID+"|"+grade.Semester] = *grade
	return nil
}

type memoryCommentRepo struct {
	comments map[string]models.Comment
}

func newMemoryCommentRepo(comments ...models.Comment) *memoryCommentRepo {
	repo := &memoryCommentRepo{comments: make(map[string]models.Comment)}
	for _, comment := range comments {
		repo.comments[comment.StudentID] = comment
	}
	return repo
}

func (m *memoryCommentRepo) GetByStudent(_ context.Context, studentID string) (models.Comment, error) {
	comment, ok := m.comments[studentID]
	if !ok {
		return models.Comment{}, gorm.ErrRecordNotFound
	}
	return comment, nil
}

func (m *memoryCommentRepo) Upsert(_ context.Context, comment *models.Comment) error {
	m.comments[comment.StudentID] = *comment
	return nil
}

type memoryTemplateRepo struct {
	templates map[string]models.Template
}

func newMemoryTemplateRepo(templates ...models.Template) *memoryTemplateRepo {
	repo := &memoryTemplateRepo{templates: make(map[string]models.Template)}
	for _, template := range templates {
		repo.templates[template.TemplateID] = template
	}
	return repo
}

func (m *memoryTemplateRepo) GetByTemplateID(_ context.Context, templateID string) (models.Template, error) {
	template, ok := m.templates[templateID]
	if !ok {
		return models.Template{}, gorm.ErrRecordNotFound
	}
	return template, nil
}

func (m *memoryTemplateRepo) List(_ context.Context) ([]models.Template, error) {
	templates := make([]models.Template, 0, len(m.templates))
	for _, template := range m.templates {
		templates = append(templates, template)
	}
	return templates, nil
}

func (m *memoryTemplateRepo) Create(_ context.Context, template *models.Template) error {
	m.templates[template.TemplateID] = *template
	return nil
}

type memoryArchiveStore struct {
	mu       sync.Mutex
	archives map[string][]byte
}

func newMemoryArchiveStore() *memoryArchiveStore {
	return &memoryArchiveStore{archives: make(map[string][]byte)}
}

func (m *memoryArchiveStore) Save(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archives[name] = data
	return nil
}

func (m *memoryArchiveStore) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.archives[name]
	if !ok {
		return nil, repository.ErrArchiveNotFound
	}
	return data, nil
}
