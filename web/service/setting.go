// Package service provides the business logic for the qrpanel web
// application: user accounts and approval, categories, products, QR code
// generation, scan tracking and aggregation, settings, uploads, and exports.
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"qrpanel/database"
	"qrpanel/database/model"
	"qrpanel/util/common"
	"qrpanel/util/random"
	"qrpanel/util/reflect_util"
	"qrpanel/web/entity"
)

var defaultValueMap = map[string]string{
	"appName":            "QR Generator Pro",
	"contactEmail":       "",
	"appURL":             "",
	"webListen":          "",
	"webPort":            "2053",
	"webBasePath":        "/",
	"sessionMaxAge":      "60",
	"pageSize":           "12",
	"maxProductsPerUser": "0",
	"secret":             random.Seq(32),
	"timeLocation":       "Local",
}

type SettingService struct{}

// GetAllSetting maps the key/value table onto entity.AllSetting, filling
// gaps from defaultValueMap. Keys without a matching struct field are
// internal and stay hidden from the settings page.
func (s *SettingService) GetAllSetting() (*entity.AllSetting, error) {
	db := database.GetDB()
	settings := make([]*model.Setting, 0)
	err := db.Model(model.Setting{}).Find(&settings).Error
	if err != nil {
		return nil, err
	}
	allSetting := &entity.AllSetting{}
	t := reflect.TypeOf(allSetting).Elem()
	v := reflect.ValueOf(allSetting).Elem()
	fields := reflect_util.GetFields(t)

	setSetting := func(key, value string) (err error) {
		defer func() {
			panicErr := recover()
			if panicErr != nil {
				err = errors.New(fmt.Sprint(panicErr))
			}
		}()

		var found bool
		var field reflect.StructField
		for _, f := range fields {
			if f.Tag.Get("json") == key {
				field = f
				found = true
				break
			}
		}

		if !found {
			return nil
		}

		fieldV := v.FieldByName(field.Name)
		switch t := fieldV.Interface().(type) {
		case int:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			fieldV.SetInt(n)
		case string:
			fieldV.SetString(value)
		case bool:
			fieldV.SetBool(value == "true")
		default:
			return common.NewErrorf("unknown field %v type %v", key, t)
		}
		return
	}

	keyMap := map[string]bool{}
	for _, setting := range settings {
		err := setSetting(setting.Key, setting.Value)
		if err != nil {
			return nil, err
		}
		keyMap[setting.Key] = true
	}

	for key, value := range defaultValueMap {
		if keyMap[key] {
			continue
		}
		err := setSetting(key, value)
		if err != nil {
			return nil, err
		}
	}

	return allSetting, nil
}

// UpdateAllSetting persists every field of the settings struct back to the
// key/value table, keyed by json tag.
func (s *SettingService) UpdateAllSetting(allSetting *entity.AllSetting) error {
	v := reflect.ValueOf(allSetting).Elem()
	t := reflect.TypeOf(allSetting).Elem()
	fields := reflect_util.GetFields(t)
	errs := make([]error, 0)
	for _, field := range fields {
		key := field.Tag.Get("json")
		fieldV := v.FieldByName(field.Name)
		value := fmt.Sprint(fieldV.Interface())
		err := s.saveSetting(key, value)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return common.Combine(errs...)
}

func (s *SettingService) ResetSettings() error {
	db := database.GetDB()
	return db.Where("1 = 1").Delete(model.Setting{}).Error
}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	setting, err := s.getSetting(key)
	db := database.GetDB()
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{
			Key:   key,
			Value: value,
		}).Error
	} else if err != nil {
		return err
	}
	setting.Key = key
	setting.Value = value
	return db.Save(setting).Error
}

func (s *SettingService) getString(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[key]
		if !ok {
			return "", common.NewErrorf("key <%v> not in defaultValueMap", key)
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) setString(key string, value string) error {
	return s.saveSetting(key, value)
}

func (s *SettingService) getInt(key string) (int, error) {
	str, err := s.getString(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}

func (s *SettingService) setInt(key string, value int) error {
	return s.setString(key, strconv.Itoa(value))
}

func (s *SettingService) GetAppName() (string, error) {
	return s.getString("appName")
}

func (s *SettingService) GetContactEmail() (string, error) {
	return s.getString("contactEmail")
}

// GetAppURL is the public base URL embedded in QR scan links. When unset it
// falls back to the listen address and port, which only works for local
// deployments.
func (s *SettingService) GetAppURL() (string, error) {
	appURL, err := s.getString("appURL")
	if err != nil {
		return "", err
	}
	if appURL != "" {
		return appURL, nil
	}
	listen, err := s.GetListen()
	if err != nil {
		return "", err
	}
	if listen == "" {
		listen = "localhost"
	}
	port, err := s.GetPort()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s:%d", listen, port), nil
}

func (s *SettingService) GetListen() (string, error) {
	return s.getString("webListen")
}

func (s *SettingService) GetPort() (int, error) {
	return s.getInt("webPort")
}

func (s *SettingService) SetPort(port int) error {
	return s.setInt("webPort", port)
}

func (s *SettingService) GetBasePath() (string, error) {
	basePath, err := s.getString("webBasePath")
	if err != nil {
		return "", err
	}
	if basePath == "" {
		basePath = "/"
	}
	if basePath[len(basePath)-1] != '/' {
		basePath += "/"
	}
	return basePath, nil
}

func (s *SettingService) GetSessionMaxAge() (int, error) {
	return s.getInt("sessionMaxAge")
}

func (s *SettingService) GetPageSize() (int, error) {
	return s.getInt("pageSize")
}

// GetMaxProductsPerUser is advisory only: nothing enforces it. The setting
// is kept because installs rely on reading it back from the settings page.
func (s *SettingService) GetMaxProductsPerUser() (int, error) {
	return s.getInt("maxProductsPerUser")
}

// GetSecret returns the session signing secret, persisting the generated
// default on first use so cookies survive restarts.
func (s *SettingService) GetSecret() (string, error) {
	setting, err := s.getSetting("secret")
	if database.IsNotFound(err) {
		value := defaultValueMap["secret"]
		if err := s.saveSetting("secret", value); err != nil {
			return "", err
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) GetTimeLocation() (*time.Location, error) {
	l, err := s.getString("timeLocation")
	if err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(l)
	if err != nil {
		defaultLocation := defaultValueMap["timeLocation"]
		location, err = time.LoadLocation(defaultLocation)
	}
	return location, err
}
