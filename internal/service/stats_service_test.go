package service

import (
	"testing"

	"github.com/MadhusudanDhakad/file-management-app/internal/model"

	"github.com/stretchr/testify/assert"
)

// TestSummaryRegularUser 普通用户只看到自己的统计
func TestSummaryRegularUser(t *testing.T) {
	mockRepo := new(MockFileRepository)
	service := NewStatsService(mockRepo)

	mockRepo.On("CountByUser", 1).Return(3, nil)
	mockRepo.On("CountByTypeForUser", 1).Return(map[model.FileType]int{
		model.FileTypePDF: 2,
		model.FileTypeTxt: 1,
	}, nil)

	stats, err := service.Summary(&model.User{ID: 1, IsStaff: false})
	assert.NoError(t, err)
	assert.Equal(t, 3, stats.TotalFiles)
	assert.Equal(t, 2, stats.FileTypes[model.FileTypePDF])
	assert.Nil(t, stats.UsersFiles)
	mockRepo.AssertNotCalled(t, "CountPerUser")
}

// TestSummaryStaffUser 管理员附带每个用户的文件数量，包括没有文件的用户
func TestSummaryStaffUser(t *testing.T) {
	mockRepo := new(MockFileRepository)
	service := NewStatsService(mockRepo)

	mockRepo.On("CountByUser", 1).Return(5, nil)
	mockRepo.On("CountByTypeForUser", 1).Return(map[model.FileType]int{
		model.FileTypeExcel: 5,
	}, nil)
	mockRepo.On("CountPerUser").Return([]model.UserFileCount{
		{Email: "admin@example.com", FileCount: 5},
		{Email: "empty@example.com", FileCount: 0},
		{Email: "user@example.com", FileCount: 2},
	}, nil)

	stats, err := service.Summary(&model.User{ID: 1, IsStaff: true})
	assert.NoError(t, err)
	assert.Len(t, stats.UsersFiles, 3)
	assert.Equal(t, 0, stats.UsersFiles[1].FileCount)
	mockRepo.AssertExpectations(t)
}
