package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gonewx/defense/pkg/app"
	"github.com/gonewx/defense/pkg/embedded"
	"github.com/gonewx/defense/pkg/game"
	"github.com/quasilyte/gdata/v2"
)

func main() {
	verbose := flag.Bool("verbose", false, "显示详细日志")
	configPath := flag.String("config", "", "防御配置文件路径（默认使用嵌入的 data/defense_profiles.yaml）")
	scenario := flag.String("scenario", "", "只运行指定场景（A-F），为空时运行全部")
	persist := flag.Bool("persist", false, "把场景存档写入用户数据目录")
	flag.Parse()

	// 初始化嵌入数据，必须在加载配置之前
	embedded.Init(dataFS)

	var saves *game.DefenseSaveManager
	if *persist {
		gdataManager, err := gdata.Open(gdata.Config{AppName: "defense"})
		if err != nil {
			log.Printf("[main] 警告：无法打开存储目录: %v（使用内存存档）", err)
		} else {
			saves = game.NewDefenseSaveManager(gdataManager)
		}
	}

	a, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		ConfigPath: *configPath,
		Saves:      saves,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		os.Exit(1)
	}

	if *scenario != "" {
		if err := a.RunScenario(*scenario, os.Stdout); err != nil {
			os.Exit(1)
		}
		return
	}

	if failed := a.RunAll(os.Stdout); failed > 0 {
		fmt.Fprintf(os.Stderr, "%d 个场景失败\n", failed)
		os.Exit(1)
	}
}
