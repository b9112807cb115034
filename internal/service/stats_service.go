package service

import (
	"github.com/MadhusudanDhakad/file-management-app/internal/errors"
	"github.com/MadhusudanDhakad/file-management-app/internal/model"
	"github.com/MadhusudanDhakad/file-management-app/internal/repository/interfaces"
)

// StatsService 聚合仪表盘的只读统计数据
type StatsService struct {
	fileRepo interfaces.FileRepository
}

func NewStatsService(fileRepo interfaces.FileRepository) *StatsService {
	return &StatsService{
		fileRepo: fileRepo,
	}
}

// Summary 返回请求用户自己的文件统计。
// 只有 IsStaff 的用户才会附带所有用户的文件数量明细，这是唯一暴露跨用户数据的地方
func (s *StatsService) Summary(user *model.User) (*model.DashboardStats, error) {
	total, err := s.fileRepo.CountByUser(user.ID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "统计文件总数失败", err)
	}

	typeCounts, err := s.fileRepo.CountByTypeForUser(user.ID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "统计文件类型失败", err)
	}

	stats := &model.DashboardStats{
		TotalFiles: total,
		FileTypes:  typeCounts,
	}

	if user.IsStaff {
		usersFiles, err := s.fileRepo.CountPerUser()
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "统计用户文件数量失败", err)
		}
		stats.UsersFiles = usersFiles
	}

	return stats, nil
}

// StatsServiceInterface 处理器依赖的统计服务契约
type StatsServiceInterface interface {
	Summary(user *model.User) (*model.DashboardStats, error)
}

var _ StatsServiceInterface = (*StatsService)(nil)
