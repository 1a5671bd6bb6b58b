package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Service  ServiceConfig  `mapstructure:"service"`
	Consul   ConsulConfig   `mapstructure:"consul"`
	Mysql    MysqlConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Rabbitmq RabbitmqConfig `mapstructure:"rabbitmq"`
	Elastic  ElasticConfig  `mapstructure:"elastic"`
	Payment  PaymentConfig  `mapstructure:"payment"`
}

type ServiceConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
}

type ConsulConfig struct {
	Address string `mapstructure:"address"`
}

type MysqlConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"dbname"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	Db       int    `mapstructure:"db"`
}

// RabbitmqConfig 订单事件发布，Url 为空则不启用
type RabbitmqConfig struct {
	Url string `mapstructure:"url"`
}

// ElasticConfig 商品搜索，Url 为空则退化为 SQL LIKE
type ElasticConfig struct {
	Url string `mapstructure:"url"`
}

// PaymentConfig 支付网关，SecretKey 为空则走测试模式（直接批准）
type PaymentConfig struct {
	BaseUrl   string `mapstructure:"base_url"`
	SecretKey string `mapstructure:"secret_key"`
}

// LoadConfig 读取配置文件
func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	log.Printf("Config loaded successfully from %s", path)
	return &config, nil
}
