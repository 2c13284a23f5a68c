package registry_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"katydid-common-idgen/pkg/idgen/clock"
	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/registry"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

// ============================================================================
// 1. Registry基础功能测试
// ============================================================================

// TestRegistry_Create 测试创建生成器
func TestRegistry_Create(t *testing.T) {
	r := registry.New(clock.System{})
	config := &snowflake.Config{Identifier: 1}

	t.Run("正常创建", func(t *testing.T) {
		gen, err := r.Create("test1", core.GeneratorTypeSnowflake, config)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if gen.IsZero() {
			t.Fatal("Create() returned zero generator")
		}
		if gen.Generator().Identifier() != 1 {
			t.Errorf("Identifier() = %d, 期望 1", gen.Generator().Identifier())
		}
	})

	t.Run("重复键", func(t *testing.T) {
		_, err := r.Create("test1", core.GeneratorTypeSnowflake, config)
		if !errors.Is(err, core.ErrGeneratorAlreadyExists) {
			t.Errorf("期望 ErrGeneratorAlreadyExists，得到 %v", err)
		}
	})

	t.Run("无效类型", func(t *testing.T) {
		_, err := r.Create("test2", core.GeneratorType("invalid"), config)
		if !errors.Is(err, core.ErrInvalidGeneratorType) {
			t.Errorf("期望 ErrInvalidGeneratorType，得到 %v", err)
		}
	})

	t.Run("无效配置类型", func(t *testing.T) {
		_, err := r.Create("test3", core.GeneratorTypeSnowflake, "not-a-config")
		if !errors.Is(err, core.ErrInvalidConfigType) {
			t.Errorf("期望 ErrInvalidConfigType，得到 %v", err)
		}
	})

	t.Run("空键", func(t *testing.T) {
		_, err := r.Create("", core.GeneratorTypeSnowflake, config)
		if !errors.Is(err, core.ErrInvalidKey) {
			t.Errorf("期望 ErrInvalidKey，得到 %v", err)
		}
	})
}

// TestRegistry_Get 测试获取生成器
func TestRegistry_Get(t *testing.T) {
	r := registry.New(clock.System{})

	created, err := r.Create("test1", core.GeneratorTypeSnowflake, &snowflake.Config{Identifier: 1})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	t.Run("获取存在的生成器_共享状态", func(t *testing.T) {
		gen, err := r.Get("test1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if gen.Generator() != created.Generator() {
			t.Error("Get() 应返回同一个底层生成器")
		}
	})

	t.Run("获取不存在的生成器", func(t *testing.T) {
		_, err := r.Get("nonexistent")
		if !errors.Is(err, core.ErrGeneratorNotFound) {
			t.Errorf("期望 ErrGeneratorNotFound，得到 %v", err)
		}
	})
}

// TestRegistry_GetOrCreate 测试获取或创建生成器
func TestRegistry_GetOrCreate(t *testing.T) {
	r := registry.New(clock.System{})

	first, err := r.GetOrCreate("orders", core.GeneratorTypeSnowflake, &snowflake.Config{Identifier: 3})
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	// 第二次调用忽略配置，返回已有生成器
	second, err := r.GetOrCreate("orders", core.GeneratorTypeSnowflake, &snowflake.Config{Identifier: 4})
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if first.Generator() != second.Generator() {
		t.Error("GetOrCreate() 应返回已存在的生成器")
	}
	if second.Generator().Identifier() != 3 {
		t.Errorf("Identifier() = %d, 期望 3", second.Generator().Identifier())
	}
}

// ============================================================================
// 2. 容量与键格式
// ============================================================================

// TestRegistry_MaxGenerators 测试数量限制
func TestRegistry_MaxGenerators(t *testing.T) {
	r := registry.New(clock.System{})

	if err := r.SetMaxGenerators(2); err != nil {
		t.Fatalf("SetMaxGenerators() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := r.Create(fmt.Sprintf("gen-%d", i), core.GeneratorTypeSnowflake, nil); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	_, err := r.Create("gen-2", core.GeneratorTypeSnowflake, nil)
	if !errors.Is(err, core.ErrMaxGeneratorsReached) {
		t.Errorf("期望 ErrMaxGeneratorsReached，得到 %v", err)
	}

	tests := []struct {
		name    string
		max     int
		wantErr bool
	}{
		{"零", 0, true},
		{"负数", -1, true},
		{"小于当前数量", 1, true},
		{"超过绝对上限", 100_001, true},
		{"合法", 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.SetMaxGenerators(tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetMaxGenerators(%d) error = %v, wantErr %v", tt.max, err, tt.wantErr)
			}
		})
	}
	if r.GetMaxGenerators() != 10 {
		t.Errorf("GetMaxGenerators() = %d, 期望 10", r.GetMaxGenerators())
	}
}

// TestRegistry_KeyValidation 测试键格式
func TestRegistry_KeyValidation(t *testing.T) {
	r := registry.New(clock.System{})

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"字母数字", "orders01", nil},
		{"允许的符号", "svc_a-b.c", nil},
		{"空格", "has space", core.ErrInvalidKeyFormat},
		{"斜杠", "a/b", core.ErrInvalidKeyFormat},
		{"超长", strings.Repeat("k", 257), core.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Create(tt.key, core.GeneratorTypeSnowflake, nil)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("不期望错误，但得到: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，得到 %v", tt.wantErr, err)
			}
			if r.Has(tt.key) {
				t.Error("非法键不应存在")
			}
		})
	}
}

// ============================================================================
// 3. 删除与列举
// ============================================================================

// TestRegistry_RemoveClearList 测试删除、清空、列举
func TestRegistry_RemoveClearList(t *testing.T) {
	r := registry.New(clock.System{})
	for _, key := range []string{"c", "a", "b"} {
		if _, err := r.Create(key, core.GeneratorTypeSnowflake, nil); err != nil {
			t.Fatalf("Create(%s) error = %v", key, err)
		}
	}

	keys := r.ListKeys()
	if strings.Join(keys, ",") != "a,b,c" {
		t.Errorf("ListKeys() = %v, 期望 [a b c]", keys)
	}

	if err := r.Remove("b"); err != nil {
		t.Errorf("Remove() error = %v", err)
	}
	if err := r.Remove("b"); !errors.Is(err, core.ErrGeneratorNotFound) {
		t.Errorf("重复删除期望 ErrGeneratorNotFound，得到 %v", err)
	}
	if r.Count() != 2 {
		t.Errorf("Count() = %d, 期望 2", r.Count())
	}

	r.Clear()
	if r.Count() != 0 {
		t.Errorf("Clear()后 Count() = %d, 期望 0", r.Count())
	}
}

// ============================================================================
// 4. 并发
// ============================================================================

// TestRegistry_ConcurrentGetOrCreate 测试并发获取同一键只创建一次
func TestRegistry_ConcurrentGetOrCreate(t *testing.T) {
	r := registry.New(clock.System{})

	const workers = 50
	gens := make([]*snowflake.Generator, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := r.GetOrCreate("shared", core.GeneratorTypeSnowflake, &snowflake.Config{Identifier: uint64(i)})
			if err != nil {
				t.Errorf("GetOrCreate() error = %v", err)
				return
			}
			gens[i] = g.Generator()
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if gens[i] != gens[0] {
			t.Fatal("并发GetOrCreate创建了多个生成器")
		}
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, 期望 1", r.Count())
	}
}

// TestRegistry_ConcurrentAssign 测试通过注册表取出的句柄并发分配唯一
func TestRegistry_ConcurrentAssign(t *testing.T) {
	r := registry.New(clock.System{})
	if _, err := r.Create("ids", core.GeneratorTypeSnowflake, &snowflake.Config{Identifier: 7}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	const workers, each = 20, 500
	var (
		mu  sync.Mutex
		set = snowflake.NewIDSet()
		wg  sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := r.Get("ids")
			if err != nil {
				t.Errorf("Get() error = %v", err)
				return
			}
			ids, err := g.AssignBatch(context.Background(), each)
			if err != nil {
				t.Errorf("AssignBatch() error = %v", err)
				return
			}
			mu.Lock()
			for _, id := range ids {
				set.Add(id)
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if set.Len() != workers*each {
		t.Errorf("唯一ID数 = %d, 期望 %d", set.Len(), workers*each)
	}
}

// TestGetRegistry 测试全局注册表单例
func TestGetRegistry(t *testing.T) {
	if registry.GetRegistry() != registry.GetRegistry() {
		t.Error("GetRegistry() 应返回同一实例")
	}
}

// TestRegistry_RegisterFactory 测试注册工厂
func TestRegistry_RegisterFactory(t *testing.T) {
	r := registry.New(clock.System{})
	manual := clock.NewManual(1234)

	if err := r.RegisterFactory(core.GeneratorTypeSnowflake, snowflake.NewFactory(manual)); err != nil {
		t.Fatalf("RegisterFactory() error = %v", err)
	}
	if err := r.RegisterFactory(core.GeneratorTypeSnowflake, nil); err == nil {
		t.Error("nil工厂应返回错误")
	}
	if err := r.RegisterFactory("uuid", snowflake.NewFactory(manual)); !errors.Is(err, core.ErrInvalidGeneratorType) {
		t.Errorf("期望 ErrInvalidGeneratorType，得到 %v", err)
	}

	g, err := r.Create("manual", core.GeneratorTypeSnowflake, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if ts := g.AssignSync().Timestamp(); ts != 1234 {
		t.Errorf("Timestamp() = %d, 期望 1234", ts)
	}
}
