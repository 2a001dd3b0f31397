// verify_defense 重放内置防御场景并检查结果
//
// 用法:
//
//	go run ./cmd/verify_defense -config data/defense_profiles.yaml
//	go run ./cmd/verify_defense -watch   # 配置文件变化时自动重新验证
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gonewx/defense/pkg/app"
	"github.com/gonewx/defense/pkg/config"
)

var (
	configPath = flag.String("config", config.DefaultDefenseConfigPath, "防御配置文件路径")
	watch      = flag.Bool("watch", false, "监听配置文件变化并重新验证")
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
)

func main() {
	flag.Parse()

	failed := verify()
	if !*watch {
		if failed != 0 {
			os.Exit(1)
		}
		return
	}

	watcher, err := config.NewWatcher(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法监听配置文件: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	fmt.Printf("监听 %s 的变化（Ctrl+C 退出）\n", *configPath)
	for {
		select {
		case name, ok := <-watcher.Events:
			if !ok {
				return
			}
			fmt.Printf("\n检测到配置变化: %s\n", name)
			verify()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "监听错误: %v\n", err)
		case <-stop:
			return
		}
	}
}

// verify 加载配置并运行所有场景，返回失败数量（配置错误算作一次失败）
func verify() int {
	a, err := app.NewApp(app.Config{Verbose: *verbose, ConfigPath: *configPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置无效: %v\n", err)
		return 1
	}

	failed := a.RunAll(os.Stdout)
	if failed > 0 {
		fmt.Printf("%d 个场景失败\n", failed)
	} else {
		fmt.Printf("全部 %d 个场景通过\n", len(app.Scenarios()))
	}
	return failed
}
