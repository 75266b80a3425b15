package xe

import "github.com/go-orz/orz"

var (
	ErrInvalidParams      = orz.NewError(10400, "参数无效")
	ErrInvalidToken       = orz.NewError(10403, "令牌无效")
	ErrInvalidAccessKey   = orz.NewError(10401, "访问密钥错误")
	ErrAssetNotFound      = orz.NewError(10000, "资产不存在")
	ErrAssetExists        = orz.NewError(10001, "相同类型的资产已存在")
	ErrPromptNotFound     = orz.NewError(10002, "提示词不存在")
	ErrActivePromptDelete = orz.NewError(10003, "无法删除激活中的提示词，请先激活其他版本")
	ErrTaskNotFound       = orz.NewError(10004, "定时任务不存在")
	ErrPlanNotFound       = orz.NewError(10005, "交易计划不存在")
	ErrInvalidCron        = orz.NewError(10006, "Cron 表达式无效，必须为六段格式（秒 分 时 日 月 周）")
	ErrInvalidCycle       = orz.NewError(10007, "分析周期无效")
	ErrInvalidPlanStatus  = orz.NewError(10008, "交易计划状态无效")
	ErrNoActivePrompt     = orz.NewError(10009, "没有激活的提示词")
)
