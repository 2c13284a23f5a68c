package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"katydid-common-idgen/internal/store"
	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

// errorResponse 错误响应
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// idsResponse 分配结果，ID以十进制字符串表示
type idsResponse struct {
	IDs []snowflake.ID `json:"ids" swaggertype:"array,string"`
}

// decodeResponse ID解析结果
type decodeResponse struct {
	core.IDInfo
	Hex    string `json:"hex"`
	Binary string `json:"binary"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// generatorsResponse 生成器键列表
type generatorsResponse struct {
	Generators []string `json:"generators"`
}

// createGeneratorRequest 创建命名生成器
type createGeneratorRequest struct {
	Key              string `json:"key" binding:"required,max=256"`
	Identifier       uint64 `json:"identifier"`
	IdentifierSource string `json:"identifier_source" binding:"omitempty,oneof=static random hostname"`
	EnableMetrics    bool   `json:"enable_metrics"`
}

// generatorResponse 命名生成器信息
type generatorResponse struct {
	Key        string `json:"key"`
	Identifier uint64 `json:"identifier"`
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, errorResponse{
		Error:     err.Error(),
		RequestID: c.GetString(ctxRequestID),
	})
	_ = c.Error(err)
}

// statusOf 错误到HTTP状态码的映射
func statusOf(err error) int {
	switch {
	case errors.Is(err, core.ErrGeneratorNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrGeneratorAlreadyExists), errors.Is(err, core.ErrMaxGeneratorsReached):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidKey), errors.Is(err, core.ErrInvalidKeyFormat),
		errors.Is(err, core.ErrInvalidIdentifierSource), errors.Is(err, core.ErrInvalidBatchSize),
		errors.Is(err, core.ErrInvalidIDString), errors.Is(err, core.ErrInvalidSnowflakeID):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// count 解析count参数，范围[1, MaxBatch]
func (s *Server) count(c *gin.Context) (int, error) {
	raw := c.DefaultQuery("count", "1")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > s.opts.Server.MaxBatch {
		return 0, fmt.Errorf("%w: count must be in [1, %d], got %q",
			core.ErrInvalidBatchSize, s.opts.Server.MaxBatch, raw)
	}
	return n, nil
}

func (s *Server) assign(c *gin.Context, gen snowflake.SharedGenerator) {
	n, err := s.count(c)
	if err != nil {
		abort(c, statusOf(err), err)
		return
	}

	ids, err := gen.AssignBatch(c.Request.Context(), n)
	if err != nil {
		abort(c, statusOf(err), err)
		return
	}
	c.JSON(http.StatusOK, idsResponse{IDs: ids})
}

// handleHealth 健康检查
//
//	@Summary	Health check
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/healthz [get]
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// handleAssign 使用默认生成器分配ID
//
//	@Summary	Assign IDs from the default generator
//	@Tags		ids
//	@Produce	json
//	@Param		count	query		int	false	"number of IDs"	default(1)
//	@Success	200		{object}	idsResponse
//	@Failure	400		{object}	errorResponse
//	@Security	BearerAuth
//	@Router		/v1/ids [get]
func (s *Server) handleAssign(c *gin.Context) {
	s.assign(c, s.opts.Default)
}

// handleAssignNamed 使用命名生成器分配ID
//
//	@Summary	Assign IDs from a named generator
//	@Tags		generators
//	@Produce	json
//	@Param		key		path		string	true	"generator key"
//	@Param		count	query		int		false	"number of IDs"	default(1)
//	@Success	200		{object}	idsResponse
//	@Failure	400		{object}	errorResponse
//	@Failure	404		{object}	errorResponse
//	@Security	BearerAuth
//	@Router		/v1/generators/{key}/ids [get]
func (s *Server) handleAssignNamed(c *gin.Context) {
	gen, err := s.opts.Registry.Get(c.Param("key"))
	if err != nil {
		abort(c, statusOf(err), err)
		return
	}
	s.assign(c, gen)
}

// handleDecode 解析ID
//
//	@Summary	Decode an ID into its fields
//	@Tags		ids
//	@Produce	json
//	@Param		id	path		string	true	"decimal, 0x hex or 0b binary"
//	@Success	200	{object}	decodeResponse
//	@Failure	400	{object}	errorResponse
//	@Security	BearerAuth
//	@Router		/v1/ids/{id} [get]
func (s *Server) handleDecode(c *gin.Context) {
	id, err := snowflake.ParseID(c.Param("id"))
	if err != nil {
		abort(c, statusOf(err), err)
		return
	}
	info, err := s.opts.Parser.Parse(id.Int64())
	if err != nil {
		abort(c, statusOf(err), err)
		return
	}

	resp := decodeResponse{IDInfo: *info, Hex: id.Hex(), Binary: id.Binary(), Valid: true}
	if err := s.opts.Validator.Validate(id.Int64()); err != nil {
		resp.Valid = false
		resp.Reason = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// handleListGenerators 列出命名生成器
//
//	@Summary	List named generators
//	@Tags		generators
//	@Produce	json
//	@Success	200	{object}	generatorsResponse
//	@Security	BearerAuth
//	@Router		/v1/generators [get]
func (s *Server) handleListGenerators(c *gin.Context) {
	c.JSON(http.StatusOK, generatorsResponse{Generators: s.opts.Registry.ListKeys()})
}

// handleCreateGenerator 创建命名生成器
//
//	@Summary	Create a named generator
//	@Tags		generators
//	@Accept		json
//	@Produce	json
//	@Param		body	body		createGeneratorRequest	true	"generator definition"
//	@Success	201		{object}	generatorResponse
//	@Failure	400		{object}	errorResponse
//	@Failure	409		{object}	errorResponse
//	@Security	BearerAuth
//	@Router		/v1/generators [post]
func (s *Server) handleCreateGenerator(c *gin.Context) {
	var req createGeneratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	def := &store.Definition{
		Key:              req.Key,
		Identifier:       req.Identifier,
		IdentifierSource: req.IdentifierSource,
		EnableMetrics:    req.EnableMetrics,
	}
	gen, err := s.opts.Registry.Create(req.Key, core.GeneratorTypeSnowflake, def.Config())
	if err != nil {
		abort(c, statusOf(err), err)
		return
	}

	if s.opts.Store != nil {
		if err := s.opts.Store.Create(c.Request.Context(), def); err != nil {
			// 持久化失败则撤销注册，保持两边一致
			_ = s.opts.Registry.Remove(req.Key)
			abort(c, http.StatusInternalServerError, err)
			return
		}
	}

	s.logger.Info("generator created via api",
		zap.String("key", req.Key),
		zap.String("request_id", c.GetString(ctxRequestID)))

	c.JSON(http.StatusCreated, generatorResponse{
		Key:        req.Key,
		Identifier: gen.Generator().Identifier(),
	})
}

// handleDeleteGenerator 删除命名生成器
//
//	@Summary	Delete a named generator
//	@Tags		generators
//	@Param		key	path	string	true	"generator key"
//	@Success	204
//	@Failure	404	{object}	errorResponse
//	@Security	BearerAuth
//	@Router		/v1/generators/{key} [delete]
func (s *Server) handleDeleteGenerator(c *gin.Context) {
	key := c.Param("key")
	if err := s.opts.Registry.Remove(key); err != nil {
		abort(c, statusOf(err), err)
		return
	}
	if s.opts.Store != nil {
		// 来自配置文件的生成器没有持久化记录
		if err := s.opts.Store.Delete(c.Request.Context(), key); err != nil && !errors.Is(err, store.ErrNotFound) {
			abort(c, http.StatusInternalServerError, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

// handleMetrics 命名生成器的监控指标
//
//	@Summary	Metrics of a named generator
//	@Tags		generators
//	@Produce	json
//	@Param		key	path		string	true	"generator key"
//	@Success	200	{object}	map[string]uint64
//	@Failure	404	{object}	errorResponse
//	@Security	BearerAuth
//	@Router		/v1/generators/{key}/metrics [get]
func (s *Server) handleMetrics(c *gin.Context) {
	gen, err := s.opts.Registry.Get(c.Param("key"))
	if err != nil {
		abort(c, statusOf(err), err)
		return
	}
	c.JSON(http.StatusOK, gen.Generator().GetMetrics())
}
